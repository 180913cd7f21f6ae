package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

type sidekiqJob struct {
	Class string            `json:"class"`
	Args  []json.RawMessage `json:"args"`
	Queue string            `json:"queue"`
}

// respConn speaks just enough RESP to authenticate and pop jobs.
type respConn struct {
	rw *bufio.ReadWriter
}

func newRespConn(rw io.ReadWriter) *respConn {
	return &respConn{rw: bufio.NewReadWriter(bufio.NewReader(rw), bufio.NewWriter(rw))}
}

func (c *respConn) writeCommand(cmd string, args ...string) error {
	if _, err := fmt.Fprintf(c.rw, "*%d\r\n", 1+len(args)); err != nil {
		return err
	}
	if err := c.writeBulk(cmd); err != nil {
		return err
	}
	for _, a := range args {
		if err := c.writeBulk(a); err != nil {
			return err
		}
	}
	return c.rw.Flush()
}

func (c *respConn) writeBulk(s string) error {
	_, err := fmt.Fprintf(c.rw, "$%d\r\n%s\r\n", len(s), s)
	return err
}

func (c *respConn) readLine() (string, error) {
	b, err := c.rw.ReadBytes('\n')
	if err != nil {
		return "", err
	}
	if len(b) >= 2 && b[len(b)-2] == '\r' {
		b = b[:len(b)-2]
	}
	return string(b), nil
}

func (c *respConn) readOK() error {
	line, err := c.readLine()
	if err != nil {
		return err
	}
	if len(line) > 0 && line[0] == '+' {
		return nil
	}
	return fmt.Errorf("redis not OK: %s", line)
}

// readBulk reads the body of a bulk string whose "$<len>" header is line.
// A nil bulk string yields ok == false.
func (c *respConn) readBulk(line string) (s string, ok bool, err error) {
	if len(line) == 0 || line[0] != '$' {
		return "", false, fmt.Errorf("expected bulk string, got %q", line)
	}
	n, err := strconv.Atoi(line[1:])
	if err != nil {
		return "", false, fmt.Errorf("bad bulk length %q", line)
	}
	if n < 0 {
		return "", false, nil
	}
	buf := make([]byte, n+2)
	if _, err := io.ReadFull(c.rw, buf); err != nil {
		return "", false, err
	}
	return string(buf[:n]), true, nil
}

// readBRPOP returns empty key and payload when the pop timed out.
func (c *respConn) readBRPOP() (key string, payload string, err error) {
	line, err := c.readLine()
	if err != nil {
		return "", "", err
	}
	if len(line) == 0 {
		return "", "", fmt.Errorf("empty reply")
	}
	switch line[0] {
	case '*':
		n, err := strconv.Atoi(line[1:])
		if err != nil {
			return "", "", fmt.Errorf("bad array length %q", line)
		}
		if n <= 0 {
			return "", "", nil
		}
		if n != 2 {
			return "", "", fmt.Errorf("unexpected BRPOP reply with %d elements", n)
		}
		parts := make([]string, 0, 2)
		for i := 0; i < n; i++ {
			hdr, err := c.readLine()
			if err != nil {
				return "", "", err
			}
			s, _, err := c.readBulk(hdr)
			if err != nil {
				return "", "", err
			}
			parts = append(parts, s)
		}
		return parts[0], parts[1], nil
	case '$':
		s, _, err := c.readBulk(line)
		return "", s, err
	case '-':
		return "", "", fmt.Errorf("redis error: %s", line)
	default:
		return "", "", fmt.Errorf("unexpected reply: %s", line)
	}
}
