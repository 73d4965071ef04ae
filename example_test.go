package bookrec_test

import (
	"context"
	"fmt"

	"github.com/rushteam/bookrec"
	"github.com/rushteam/bookrec/core"
)

func ExampleNew() {
	ctx := context.Background()
	engine, err := bookrec.New(ctx, bookrec.Options{})
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	recs, err := engine.Recommend(ctx, bookrec.Request{
		Method:  "heuristic",
		Ratings: core.Ratings{"1": 5},
	})
	if err != nil {
		panic(err)
	}
	for _, r := range recs {
		fmt.Printf("%d %.0f\n", r.ID, r.Score)
	}
	// Output:
	// 9 121
	// 3 114
	// 20 101
	// 5 96
	// 7 93
	// 12 72
}
