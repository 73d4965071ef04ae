package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rushteam/bookrec/catalog"
)

func (a *app) booksCmd() *cobra.Command {
	var q catalog.Query
	cmd := &cobra.Command{
		Use:   "books",
		Short: "List books in the catalog",
		Example: `  bookrec books --category Python
  bookrec books --search raschka
  bookrec books --where 'book.year >= 2020 && book.rating > 4.5'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, done, err := a.recommender(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			books, err := r.Books(cmd.Context(), q)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(books)
			}
			return a.printBooks(books)
		},
	}
	cmd.Flags().StringVar(&q.Category, "category", "", "Only books in this category (\"All\" for every category)")
	cmd.Flags().StringVar(&q.Search, "search", "", "Case-insensitive substring of title or author")
	cmd.Flags().StringVar(&q.Where, "where", "", "CEL expression over book, e.g. book.year >= 2020")
	return cmd
}

func (a *app) bookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "book ID",
		Short: "Show one book",
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

			book, err := r.Book(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(book)
			}
			return a.printBooks([]catalog.Book{book})
		},
	}
}

func (a *app) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, done, err := a.recommender(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			cats, err := r.Categories(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(cats)
			}
			rows := make([][]string, 0, len(cats))
			for _, c := range cats {
				rows = append(rows, []string{c})
			}
			return a.printTable([]string{"Category"}, rows)
		},
	}
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, done, err := a.recommender(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			stats, err := r.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(stats)
			}
			return a.printStats(stats)
		},
	}
}

func parseBookID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, errInvalidArg("book id must be a positive integer: " + s)
	}
	return id, nil
}
