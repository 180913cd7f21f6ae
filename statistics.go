// Package statistics computes descriptive statistics over in-memory samples.
package statistics

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Number is any integer or floating point element type.
type Number interface {
	constraints.Integer | constraints.Float
}

// ErrEmptyInput is returned by every statistic when called with no samples.
var ErrEmptyInput = errors.New("empty input")

func emptyInput(statistic string) error {
	return fmt.Errorf("%w: cannot compute %s of an empty list", ErrEmptyInput, statistic)
}

// Mean returns the arithmetic mean of numbers.
func Mean[T Number](numbers []T) (float64, error) {
	if len(numbers) == 0 {
		return 0, emptyInput("mean")
	}
	var sum float64
	for _, v := range numbers {
		sum += float64(v)
	}
	return sum / float64(len(numbers)), nil
}

// Median returns the middle value of numbers, or the average of the two
// middle values when the count is even. numbers is not modified.
func Median[T Number](numbers []T) (float64, error) {
	if len(numbers) == 0 {
		return 0, emptyInput("median")
	}
	s := sortedCopy(numbers)
	n := len(s)
	mid := n / 2
	if n%2 == 1 {
		return float64(s[mid]), nil
	}
	return (float64(s[mid-1]) + float64(s[mid])) / 2.0, nil
}

// Mode returns the most frequent value in numbers. When several values share
// the highest count, the one that appears first wins.
func Mode[T Number](numbers []T) (T, error) {
	if len(numbers) == 0 {
		var zero T
		return zero, emptyInput("mode")
	}

	counts := make(map[T]int)
	firstIndex := make(map[T]int)
	for i, x := range numbers {
		counts[x]++
		if _, ok := firstIndex[x]; !ok {
			firstIndex[x] = i
		}
	}

	best := numbers[0]
	bestCount := -1
	bestFirst := len(numbers)
	for x, count := range counts {
		idx := firstIndex[x]
		if count > bestCount || (count == bestCount && idx < bestFirst) {
			best = x
			bestCount = count
			bestFirst = idx
		}
	}
	return best, nil
}

// Variance returns the population variance of numbers (divides by n, not n-1).
func Variance[T Number](numbers []T) (float64, error) {
	if len(numbers) == 0 {
		return 0, emptyInput("variance")
	}
	n := len(numbers)
	if n == 1 {
		return 0.0, nil
	}

	m, err := Mean(numbers)
	if err != nil {
		return 0, err
	}
	var sumsq float64
	for _, v := range numbers {
		d := float64(v) - m
		sumsq += d * d
	}
	return sumsq / float64(n), nil
}

func sortedCopy[T Number](numbers []T) []T {
	s := append([]T(nil), numbers...)
	slices.Sort(s)
	return s
}
