package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (a *app) rateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rate USER BOOK_ID STARS",
		Short:   "Store a rating",
		Example: "  bookrec rate alice 3 5",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseBookID(args[1])
			if err != nil {
				return err
			}
			stars, err := strconv.Atoi(args[2])
			if err != nil {
				return errInvalidArg("rating must be an integer between 1 and 5")
			}
			r, done, err := a.recommender(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			stored, err := r.AddRating(cmd.Context(), args[0], bookID, stars)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(stored)
			}
			_, err = fmt.Fprintf(a.out, "%s rated book %d: %s\n", stored.UserID, stored.BookID, stars2str(stored.Rating))
			return err
		},
	}
}

func (a *app) ratingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ratings USER",
		Short: "List a user's ratings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, done, err := a.recommender(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			ratings, err := r.UserRatings(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(ratings)
			}
			rows := make([][]string, 0, len(ratings))
			for _, id := range ratings.IDs() {
				rows = append(rows, []string{id, stars2str(ratings[id])})
			}
			return a.printTable([]string{"Book", "Rating"}, rows)
		},
	}
}

func (a *app) unrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unrate USER BOOK_ID",
		Short: "Delete a rating",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseBookID(args[1])
			if err != nil {
				return err
			}
			r, done, err := a.recommender(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			return r.DeleteRating(cmd.Context(), args[0], bookID)
		},
	}
}
