package main

import (
	"github.com/spf13/cobra"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/recommend"
)

func (a *app) recommendCmd() *cobra.Command {
	var (
		rates map[string]int
		req   recommend.Request
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend books from ratings",
		Long: `Recommend books from star ratings given with --rate, or from the ratings
stored for --user.

Methods: heuristic, collaborative, content, hybrid, knn, popular, weighted, svd.`,
		Example: `  bookrec recommend --rate 1=5 --rate 3=4
  bookrec recommend --rate 1=5,6=4 --method content -n 3
  bookrec recommend --user alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, done, err := a.recommender(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			req.Ratings = core.Ratings(rates)
			recs, err := r.Recommend(cmd.Context(), req)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(recs)
			}
			return a.printRecommendations(recs)
		},
	}
	cmd.Flags().StringToIntVar(&rates, "rate", nil, "Rating as BOOK_ID=STARS (repeatable)")
	cmd.Flags().StringVar(&req.Method, "method", "", "Recommendation method (default depends on local or remote mode)")
	cmd.Flags().IntVarP(&req.N, "n", "n", 0, "Number of recommendations (1-50, default 6)")
	cmd.Flags().StringVar(&req.UserID, "user", "", "Use the stored ratings of this user when --rate is absent")
	return cmd
}

func (a *app) similarCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "similar ID",
		Short: "Books with content similar to a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			r, done, err := a.recommender(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			recs, err := r.Similar(cmd.Context(), id, n)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(recs)
			}
			return a.printRecommendations(recs)
		},
	}
	cmd.Flags().IntVarP(&n, "n", "n", 0, "Number of books (1-50, default 5)")
	return cmd
}
