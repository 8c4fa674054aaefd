package domain

import (
	"cmp"
	"slices"
)

// SortStable orders items by compare in the given direction. Ties are broken
// by id ascending so that consecutive pages never overlap.
func SortStable[T any](items []T, dir Direction, compare func(a, b *T) int, id func(*T) int64) {
	slices.SortStableFunc(items, func(a, b T) int {
		c := compare(&a, &b)
		if dir == Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(id(&a), id(&b))
	})
}
