package aggregate

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidTopN is returned for a top-N limit below 1.
	ErrInvalidTopN = errors.New("top-N limit must be at least 1")
	// ErrInvalidSpec is returned when a ranking has no score function.
	ErrInvalidSpec = errors.New("invalid ranking spec")
)

// TiePolicy decides how equal scores are numbered.
type TiePolicy int

const (
	// Dense gives ties the same rank and the next score rank+1 (1,1,2).
	Dense TiePolicy = iota
	// Competition gives ties the same rank and skips past the tie group (1,1,3).
	Competition
	// RowNumber numbers every row distinctly in sorted order (1,2,3).
	RowNumber
)

// Ranked pairs a row with its rank inside its partition.
type Ranked[T any] struct {
	Row  T
	Rank int
}

// Spec parameterizes Rank. Partition may be nil for a single partition.
// Rows are ordered by Score descending, then by Tie for determinism.
type Spec[T any, P comparable] struct {
	Partition func(T) P
	Score     func(T) int
	Tie       func(a, b T) int
	Policy    TiePolicy
}

// Rank orders rows within each partition and numbers them. Partitions keep
// the order in which they are first seen.
func Rank[T any, P comparable](rows []T, spec Spec[T, P]) ([]Ranked[T], error) {
	if spec.Score == nil {
		return nil, fmt.Errorf("score function: %w", ErrInvalidSpec)
	}
	var zero P
	partOf := spec.Partition
	if partOf == nil {
		partOf = func(T) P { return zero }
	}
	var order []P
	parts := map[P][]T{}
	for _, r := range rows {
		p := partOf(r)
		if _, ok := parts[p]; !ok {
			order = append(order, p)
		}
		parts[p] = append(parts[p], r)
	}
	out := make([]Ranked[T], 0, len(rows))
	for _, p := range order {
		group := parts[p]
		slices.SortStableFunc(group, func(a, b T) int {
			if c := cmp.Compare(spec.Score(b), spec.Score(a)); c != 0 {
				return c
			}
			if spec.Tie == nil {
				return 0
			}
			return spec.Tie(a, b)
		})
		rank := 0
		for i, r := range group {
			switch spec.Policy {
			case RowNumber:
				rank = i + 1
			case Competition:
				if i == 0 || spec.Score(r) != spec.Score(group[i-1]) {
					rank = i + 1
				}
			default:
				if i == 0 || spec.Score(r) != spec.Score(group[i-1]) {
					rank++
				}
			}
			out = append(out, Ranked[T]{Row: r, Rank: rank})
		}
	}
	return out, nil
}

// TopN keeps rows whose rank is at most n. Ties at the boundary are all kept,
// so the result may hold more than n rows per partition.
func TopN[T any](ranked []Ranked[T], n int) ([]Ranked[T], error) {
	if n < 1 {
		return nil, fmt.Errorf("top %d: %w", n, ErrInvalidTopN)
	}
	out := make([]Ranked[T], 0, len(ranked))
	for _, r := range ranked {
		if r.Rank <= n {
			out = append(out, r)
		}
	}
	return out, nil
}

// RankBuckets ranks buckets by count in one partition, breaking ties by key.
func RankBuckets[K comparable](buckets []Bucket[K], policy TiePolicy, tie func(a, b K) int) []Ranked[Bucket[K]] {
	spec := Spec[Bucket[K], struct{}]{
		Score:  func(b Bucket[K]) int { return b.Count },
		Policy: policy,
	}
	if tie != nil {
		spec.Tie = func(a, b Bucket[K]) int { return tie(a.Key, b.Key) }
	}
	ranked, _ := Rank(buckets, spec)
	return ranked
}
