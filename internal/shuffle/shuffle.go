// Package shuffle orders decks with a reproducible Fisher-Yates permutation.
package shuffle

import "math/rand"

// Source yields floats uniformly distributed in [0, 1).
type Source interface {
	Float64() float64
}

// Mulberry32 is a small seeded 32-bit generator. Identical seeds produce
// identical sequences on every platform.
type Mulberry32 struct {
	state uint32
}

// NewMulberry32 returns a generator whose state is the low 32 bits of seed.
func NewMulberry32(seed int64) *Mulberry32 {
	return &Mulberry32{state: uint32(seed)}
}

// Float64 advances the generator and returns the next value in [0, 1).
func (m *Mulberry32) Float64() float64 {
	m.state += 0x6D2B79F5
	t := m.state * 0x85459A6D
	t ^= t >> 15
	t *= 0x6C078965
	t ^= t >> 15
	return float64(t) / 4294967296.0
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// NewSource returns a seeded source when seed is set, otherwise one backed by
// the auto-seeded math/rand package source.
func NewSource(seed *int64) Source {
	if seed != nil {
		return NewMulberry32(*seed)
	}
	return globalSource{}
}

// Shuffle returns a permutation of items without touching the input. With a
// seed the result depends only on (items, seed).
func Shuffle[T any](items []T, seed *int64) []T {
	return WithSource(items, NewSource(seed))
}

// WithSource permutes a copy of items, drawing one value per swap step.
func WithSource[T any](items []T, src Source) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i >= 1; i-- {
		j := int(src.Float64() * float64(i+1))
		if j > i {
			j = i
		}
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Seed is a helper for building an optional seed from a literal.
func Seed(v int64) *int64 {
	return &v
}
