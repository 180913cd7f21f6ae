package statistics

import (
	"errors"
	"math"
)

var ErrInvalidQuantile = errors.New("quantile must be within [0, 1]")

// Summary is the full set of statistics stored for one batch of samples.
type Summary struct {
	Count    int
	Min      float64
	Max      float64
	Mean     float64
	Median   float64
	Mode     float64
	Q1       float64
	Q3       float64
	Variance float64
	StdDev   float64
}

// Quantile returns the nearest-rank q-quantile of numbers.
func Quantile[T Number](numbers []T, q float64) (float64, error) {
	if len(numbers) == 0 {
		return 0, emptyInput("quantile")
	}
	if q < 0 || q > 1 || math.IsNaN(q) {
		return 0, ErrInvalidQuantile
	}
	s := sortedCopy(numbers)
	return float64(s[rankIndex(len(s), q)]), nil
}

func rankIndex(n int, q float64) int {
	i := int(math.Ceil(q*float64(n)) - 1)
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	return i
}

// StdDev returns the population standard deviation of numbers.
func StdDev[T Number](numbers []T) (float64, error) {
	v, err := Variance(numbers)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// Summarize computes every Summary field for samples.
func Summarize(samples []float64) (Summary, error) {
	if len(samples) == 0 {
		return Summary{}, emptyInput("summary")
	}
	s := sortedCopy(samples)
	n := len(s)

	mean, err := Mean(samples)
	if err != nil {
		return Summary{}, err
	}
	median, err := Median(samples)
	if err != nil {
		return Summary{}, err
	}
	mode, err := Mode(samples)
	if err != nil {
		return Summary{}, err
	}
	variance, err := Variance(samples)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Count:    n,
		Min:      s[0],
		Max:      s[n-1],
		Mean:     mean,
		Median:   median,
		Mode:     mode,
		Q1:       s[rankIndex(n, 0.25)],
		Q3:       s[rankIndex(n, 0.75)],
		Variance: variance,
		StdDev:   math.Sqrt(variance),
	}, nil
}
