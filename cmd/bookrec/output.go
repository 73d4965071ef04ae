package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-json"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/recommend"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
)

func errInvalidArg(msg string) error {
	return core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInvalidInput, msg)
}

func (a *app) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

func (a *app) printTable(headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(a.out, t.String())
	return err
}

func bookRow(b catalog.Book) []string {
	return []string{
		strconv.Itoa(b.ID),
		b.Title,
		b.Author,
		b.Category,
		b.Level,
		strconv.FormatFloat(b.Rating, 'f', 1, 64),
		strconv.Itoa(b.Year),
	}
}

var bookHeaders = []string{"ID", "Title", "Author", "Category", "Level", "Rating", "Year"}

func (a *app) printBooks(books []catalog.Book) error {
	if len(books) == 0 {
		_, err := fmt.Fprintln(a.out, "No books found.")
		return err
	}
	rows := make([][]string, 0, len(books))
	for _, b := range books {
		rows = append(rows, bookRow(b))
	}
	return a.printTable(bookHeaders, rows)
}

func (a *app) printRecommendations(recs []recommend.Recommendation) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(a.out, "No recommendations. Rate a few books 4 stars or more first.")
		return err
	}
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, append(bookRow(r.Book), strconv.FormatFloat(r.Score, 'f', 3, 64)))
	}
	return a.printTable(append(append([]string{}, bookHeaders...), "Score"), rows)
}

func (a *app) printStats(s catalog.Stats) error {
	if _, err := fmt.Fprintf(a.out, "%d books, average rating %.2f, published %d-%d\n",
		s.TotalBooks, s.AvgRating, s.YearRange[0], s.YearRange[1]); err != nil {
		return err
	}
	for _, group := range []struct {
		title  string
		counts map[string]int
	}{
		{"Categories", s.Categories},
		{"Levels", s.Levels},
	} {
		fmt.Fprintln(a.out, titleStyle.Render(group.title))
		if err := a.printTable([]string{"Name", "Books"}, countRows(group.counts)); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.out, titleStyle.Render("Top rated"))
	rows := make([][]string, 0, len(s.TopRated))
	for _, t := range s.TopRated {
		rows = append(rows, []string{t.Title, strconv.FormatFloat(t.Rating, 'f', 1, 64)})
	}
	return a.printTable([]string{"Title", "Rating"}, rows)
}

// countRows 按数量降序、名称升序排列。
func countRows(counts map[string]int) [][]string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, strconv.Itoa(counts[name])})
	}
	return rows
}

func stars2str(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}
