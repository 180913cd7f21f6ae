package statistics

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	got, err := Mean([]int{1, 2, 3, 4, 5})
	require.NoError(t, err)
	require.Equal(t, 3.0, got)

	got, err = Mean([]int{10, 20})
	require.NoError(t, err)
	require.Equal(t, 15.0, got)

	got, err = Mean([]float64{0.5, 1.5})
	require.NoError(t, err)
	require.Equal(t, 1.0, got)
}

func TestMedian(t *testing.T) {
	got, err := Median([]int{1, 3, 5})
	require.NoError(t, err)
	require.Equal(t, 3.0, got)

	got, err = Median([]int{1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, 2.5, got)

	got, err = Median([]float64{9, -1, 4})
	require.NoError(t, err)
	require.Equal(t, 4.0, got)
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	in := []int{5, 1, 4, 2, 3}
	_, err := Median(in)
	require.NoError(t, err)
	require.Equal(t, []int{5, 1, 4, 2, 3}, in)
}

func TestMode(t *testing.T) {
	got, err := Mode([]int{1, 2, 2, 3, 3, 3})
	require.NoError(t, err)
	require.Equal(t, 3, got)

	// 1 and 2 both appear twice; 1 appears first.
	got, err = Mode([]int{1, 1, 2, 2})
	require.NoError(t, err)
	require.Equal(t, 1, got)

	got, err = Mode([]int{2, 1, 1, 2})
	require.NoError(t, err)
	require.Equal(t, 2, got)

	f, err := Mode([]float64{2.5, 7, 7, 2.5, 1})
	require.NoError(t, err)
	require.Equal(t, 2.5, f)
}

func TestModeTieBreakIsStable(t *testing.T) {
	in := []int{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}
	for i := 0; i < 50; i++ {
		got, err := Mode(in)
		require.NoError(t, err)
		require.Equal(t, 9, got)
	}
}

func TestVariance(t *testing.T) {
	got, err := Variance([]int{1, 2, 3, 4, 5})
	require.NoError(t, err)
	require.Equal(t, 2.0, got)

	for _, x := range []float64{0, 7.3, -1e9, 0.1} {
		got, err = Variance([]float64{x})
		require.NoError(t, err)
		require.Equal(t, 0.0, got)
	}

	got, err = Variance([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NoError(t, err)
	require.Equal(t, 4.0, got)
}

func TestEmptyInput(t *testing.T) {
	_, err := Mean([]float64{})
	require.ErrorIs(t, err, ErrEmptyInput)
	require.Contains(t, err.Error(), "mean")

	_, err = Median([]int(nil))
	require.ErrorIs(t, err, ErrEmptyInput)
	require.Contains(t, err.Error(), "median")

	_, err = Mode([]int{})
	require.ErrorIs(t, err, ErrEmptyInput)
	require.Contains(t, err.Error(), "mode")

	_, err = Variance([]float32{})
	require.True(t, errors.Is(err, ErrEmptyInput))
	require.Contains(t, err.Error(), "variance")
}

func TestRandomSamples(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(40)
		in := make([]float64, n)
		for j := range in {
			in[j] = rng.NormFloat64() * 100
		}
		orig := append([]float64(nil), in...)
		lo, hi := in[0], in[0]
		for _, v := range in {
			lo = min(lo, v)
			hi = max(hi, v)
		}

		med, err := Median(in)
		require.NoError(t, err)
		require.GreaterOrEqual(t, med, lo)
		require.LessOrEqual(t, med, hi)

		v1, err := Variance(in)
		require.NoError(t, err)
		require.GreaterOrEqual(t, v1, 0.0)

		v2, err := Variance(in)
		require.NoError(t, err)
		require.Equal(t, v1, v2)

		m1, _ := Mode(in)
		m2, _ := Mode(in)
		require.Equal(t, m1, m2)

		require.Equal(t, orig, in)
	}
}
