package fragments

import (
	"context"
	"errors"
)

// ErrNoFragment is returned by a Fetcher when nothing is stored under an id.
var ErrNoFragment = errors.New("fragments: no fragment at id")

// Fragment is one indexed piece of the message.
type Fragment struct {
	Index int64  `json:"index"`
	Text  string `json:"text"`
}

// Fetcher retrieves the fragment stored under an identifier.
//
// Implementations return ErrNoFragment (possibly wrapped) when the id maps to
// nothing. Any error is treated as a miss by the decoder; errors are only
// distinguished for reporting.
type Fetcher interface {
	Fetch(ctx context.Context, id int64) (Fragment, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, id int64) (Fragment, error)

// Fetch calls f(ctx, id).
func (f FetcherFunc) Fetch(ctx context.Context, id int64) (Fragment, error) {
	return f(ctx, id)
}
