// Package paging walks page-numbered REST collections.
package paging

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

// ErrTooManyPages is returned when a collection does not end within MaxPages.
var ErrTooManyPages = errors.New("too many pages")

// Page is one response of a paged collection.
type Page[T any] struct {
	Items []T
	// Last is set on the final page.
	Last bool
}

// FetchFunc requests page pageNo (1-based).
type FetchFunc[T any] func(ctx context.Context, pageNo int) (Page[T], error)

// Pager fetches pages sequentially until the last one.
type Pager[T any] struct {
	Fetch FetchFunc[T]
	// MaxPages bounds the walk. Zero means unbounded.
	MaxPages int
}

// New returns a Pager over fetch.
func New[T any](fetch FetchFunc[T]) *Pager[T] {
	return &Pager[T]{Fetch: fetch}
}

// Pages yields the items of each page in request order, starting from page 1
// every time it is ranged over. Iteration stops after the last page or after
// yielding the first error.
func (p *Pager[T]) Pages(ctx context.Context) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		for pageNo := 1; ; pageNo++ {
			if p.MaxPages > 0 && pageNo > p.MaxPages {
				yield(nil, fmt.Errorf("stopped after %d pages: %w", p.MaxPages, ErrTooManyPages))
				return
			}
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			page, err := p.Fetch(ctx, pageNo)
			if err != nil {
				yield(nil, fmt.Errorf("page %d: %w", pageNo, err))
				return
			}
			if !yield(page.Items, nil) || page.Last {
				return
			}
		}
	}
}

// Collect returns every item of every page.
func (p *Pager[T]) Collect(ctx context.Context) ([]T, error) {
	var all []T
	for items, err := range p.Pages(ctx) {
		if err != nil {
			return all, err
		}
		all = append(all, items...)
	}
	return all, nil
}
