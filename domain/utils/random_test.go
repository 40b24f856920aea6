package utils

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCryptoRandom_Intn(t *testing.T) {
	t.Parallel()

	rng := CryptoRandom{}
	for i := 0; i < 1000; i++ {
		v, err := rng.Intn(7)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, int64(0))
		assert.Less(t, v, int64(7))
	}

	_, err := rng.Intn(0)
	assert.Error(t, err)
}

func TestShuffle_IsPermutation(t *testing.T) {
	t.Parallel()

	items := Sequence(500)
	require.NoError(t, Shuffle(CryptoRandom{}, items))

	sorted := append([]int64(nil), items...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	assert.Equal(t, Sequence(500), sorted)
}

func TestSample(t *testing.T) {
	t.Parallel()

	items := Sequence(20)

	t.Run("distinct members of input", func(t *testing.T) {
		t.Parallel()

		got, err := Sample(CryptoRandom{}, items, 9)
		require.NoError(t, err)
		require.Len(t, got, 9)

		seen := make(map[int64]bool)
		for _, v := range got {
			assert.False(t, seen[v], "duplicate %d", v)
			seen[v] = true
			assert.Contains(t, items, v)
		}
	})

	t.Run("input untouched", func(t *testing.T) {
		t.Parallel()

		input := Sequence(10)
		_, err := Sample(CryptoRandom{}, input, 10)
		require.NoError(t, err)
		assert.Equal(t, Sequence(10), input)
	})

	t.Run("k out of range", func(t *testing.T) {
		t.Parallel()

		_, err := Sample(CryptoRandom{}, items, 21)
		assert.Error(t, err)
		_, err = Sample(CryptoRandom{}, items, -1)
		assert.Error(t, err)
	})

	t.Run("zero sample", func(t *testing.T) {
		t.Parallel()

		got, err := Sample(CryptoRandom{}, items, 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestSample_Uniform(t *testing.T) {
	t.Parallel()

	// every item of 5 should be picked roughly 2/5 of the time when sampling 2
	const trials = 20000
	counts := make(map[int64]int)
	items := Sequence(5)
	for i := 0; i < trials; i++ {
		got, err := Sample(CryptoRandom{}, items, 2)
		require.NoError(t, err)
		for _, v := range got {
			counts[v]++
		}
	}

	expected := float64(trials) * 2 / 5
	for _, v := range items {
		assert.InDelta(t, expected, float64(counts[v]), expected*0.1, "item %d", v)
	}
}
