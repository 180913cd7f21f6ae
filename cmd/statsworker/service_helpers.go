package main

import (
	"encoding/json"
	"fmt"
	"strconv"
)

var acceptedJobClasses = map[string]bool{
	"GoWorker":   true,
	"RubyWorker": true,
}

// parseInt64 extracts an int64 from a Sidekiq payload argument that may be encoded
// either as a JSON number or as a quoted string.
func parseInt64(raw json.RawMessage) (int64, error) {
	var asNumber int64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if asString == "" {
			return 0, fmt.Errorf("empty string")
		}
		return strconv.ParseInt(asString, 10, 64)
	}

	return 0, fmt.Errorf("unsupported arg: %s", string(raw))
}

// decodeJob parses a queue payload and returns the test run it refers to.
// skip is true for well-formed jobs of a class this worker does not handle.
func decodeJob(payload string) (testRunID int64, skip bool, err error) {
	var job sidekiqJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		return 0, false, fmt.Errorf("invalid job json: %w", err)
	}
	if !acceptedJobClasses[job.Class] {
		return 0, true, nil
	}
	if len(job.Args) > 0 {
		testRunID, _ = parseInt64(job.Args[0])
	}
	if testRunID == 0 {
		return 0, false, fmt.Errorf("job missing test_run_id: %s", payload)
	}
	return testRunID, false, nil
}
