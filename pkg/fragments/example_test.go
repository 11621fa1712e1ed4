package fragments_test

import (
	"context"
	"fmt"
	"time"

	"github.com/ligustah/glean/pkg/fragments"
)

func ExampleDecode() {
	// A tiny id space where three ids hold the message.
	table := map[int64]fragments.Fragment{
		5:  {Index: 0, Text: "Hello"},
		9:  {Index: 1, Text: "sparse"},
		14: {Index: 2, Text: "world"},
	}
	fetcher := fragments.FetcherFunc(func(_ context.Context, id int64) (fragments.Fragment, error) {
		if f, ok := table[id]; ok {
			return f, nil
		}
		return fragments.Fragment{}, fragments.ErrNoFragment
	})

	res, err := fragments.Decode(context.Background(), fetcher,
		fragments.WithMaxID(16),
		fragments.WithInitialRequests(32),
		fragments.WithQuietPeriod(20*time.Millisecond),
		fragments.WithBackfill(16, 5*time.Millisecond),
	)
	if err != nil {
		panic(err)
	}

	fmt.Println(res.Spaced)
	fmt.Println(res.Fragments)
	// Output:
	// Hello sparse world
	// 3
}

func ExampleAssemble() {
	message, spaced := fragments.Assemble(map[int64]string{2: "c", 0: "a", 1: "b"})
	fmt.Println(message)
	fmt.Println(spaced)
	// Output:
	// abc
	// a b c
}
