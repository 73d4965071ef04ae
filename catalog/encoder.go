package catalog

import "sort"

// Encoder 把书籍编码为数值特征 [category_enc, level_enc, rating, year_norm]，用于 KNN。
// 分类与难度按字典序编号（0 起），年份做 min-max 归一化。
type Encoder struct {
	categories map[string]int
	levels     map[string]int
	minYear    int
	maxYear    int
}

// Dimension 是 Encode 输出的向量维度。
const Dimension = 4

// NewEncoder 基于目录拟合编码器。
func NewEncoder(c *Catalog) *Encoder {
	e := &Encoder{
		categories: labelIndex(c.books, func(b Book) string { return b.Category }),
		levels:     labelIndex(c.books, func(b Book) string { return b.Level }),
	}
	for i, b := range c.books {
		if i == 0 || b.Year < e.minYear {
			e.minYear = b.Year
		}
		if i == 0 || b.Year > e.maxYear {
			e.maxYear = b.Year
		}
	}
	return e
}

func labelIndex(books []Book, field func(Book) string) map[string]int {
	seen := make(map[string]struct{})
	labels := make([]string, 0)
	for _, b := range books {
		if _, ok := seen[field(b)]; !ok {
			seen[field(b)] = struct{}{}
			labels = append(labels, field(b))
		}
	}
	sort.Strings(labels)
	out := make(map[string]int, len(labels))
	for i, l := range labels {
		out[l] = i
	}
	return out
}

// Encode 返回书籍的数值特征；年份跨度为 0 时 year_norm 取 0。
func (e *Encoder) Encode(b Book) []float64 {
	yearNorm := 0.0
	if span := e.maxYear - e.minYear; span > 0 {
		yearNorm = float64(b.Year-e.minYear) / float64(span)
	}
	return []float64{
		float64(e.categories[b.Category]),
		float64(e.levels[b.Level]),
		b.Rating,
		yearNorm,
	}
}
