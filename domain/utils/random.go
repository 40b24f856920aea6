package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CryptoRandom draws integers from crypto/rand
type CryptoRandom struct{}

// Intn returns a uniform integer in [0, n)
func (CryptoRandom) Intn(n int64) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("invalid random bound %d", n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random number: %w", err)
	}
	return v.Int64(), nil
}

// Intner is satisfied by interfaces.RandomSource
type Intner interface {
	Intn(n int64) (int64, error)
}

// Shuffle permutes items in place with Fisher-Yates
func Shuffle[T any](rng Intner, items []T) error {
	for i := int64(len(items)) - 1; i > 0; i-- {
		j, err := rng.Intn(i + 1)
		if err != nil {
			return err
		}
		items[i], items[j] = items[j], items[i]
	}
	return nil
}

// Sample returns k distinct items chosen uniformly at random, in selection
// order. It runs a partial Fisher-Yates over a copy, so items is untouched
// and every k-subset is equally likely.
func Sample[T any](rng Intner, items []T, k int) ([]T, error) {
	if k < 0 || k > len(items) {
		return nil, fmt.Errorf("cannot sample %d of %d items", k, len(items))
	}

	pool := make([]T, len(items))
	copy(pool, items)

	n := int64(len(pool))
	for i := 0; i < k; i++ {
		j, err := rng.Intn(n - int64(i))
		if err != nil {
			return nil, err
		}
		j += int64(i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return pool[:k], nil
}

// Sequence returns 1..n in ascending order
func Sequence(n int64) []int64 {
	seq := make([]int64, n)
	for i := range seq {
		seq[i] = int64(i) + 1
	}
	return seq
}
