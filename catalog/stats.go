package catalog

import "sort"

// Stats 是目录统计信息。
type Stats struct {
	TotalBooks int            `json:"total_books"`
	Categories map[string]int `json:"categories"`
	Levels     map[string]int `json:"levels"`
	AvgRating  float64        `json:"avg_rating"`
	YearRange  [2]int         `json:"year_range"`
	TopRated   []RatedTitle   `json:"top_rated"`
}

// RatedTitle 是 TopRated 中的一项。
type RatedTitle struct {
	Title  string  `json:"title"`
	Rating float64 `json:"rating"`
}

const topRatedN = 5

// Stats 计算目录统计；TopRated 评分相同时保持目录顺序。
func (c *Catalog) Stats() Stats {
	s := Stats{
		TotalBooks: len(c.books),
		Categories: make(map[string]int),
		Levels:     make(map[string]int),
		TopRated:   []RatedTitle{},
	}
	if len(c.books) == 0 {
		return s
	}

	var sum float64
	s.YearRange = [2]int{c.books[0].Year, c.books[0].Year}
	for _, b := range c.books {
		s.Categories[b.Category]++
		s.Levels[b.Level]++
		sum += b.Rating
		if b.Year < s.YearRange[0] {
			s.YearRange[0] = b.Year
		}
		if b.Year > s.YearRange[1] {
			s.YearRange[1] = b.Year
		}
	}
	s.AvgRating = sum / float64(len(c.books))

	for _, b := range c.TopRated(topRatedN) {
		s.TopRated = append(s.TopRated, RatedTitle{Title: b.Title, Rating: b.Rating})
	}
	return s
}

// TopRated 返回评分最高的 n 本书，评分相同时保持目录顺序。
func (c *Catalog) TopRated(n int) []Book {
	books := c.Books()
	sort.SliceStable(books, func(i, j int) bool {
		return books[i].Rating > books[j].Rating
	})
	if n >= 0 && len(books) > n {
		books = books[:n]
	}
	return books
}
