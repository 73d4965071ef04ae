package catalog

import (
	"sort"
	"strings"
)

const unknown = "Unknown"

// Record 是待清洗的原始书籍记录，nil 字段表示数据中缺失（YAML/JSON 中未给出或为 null）。
type Record struct {
	ID         int      `json:"book_id" yaml:"book_id"`
	Title      *string  `json:"title" yaml:"title"`
	Author     *string  `json:"author" yaml:"author"`
	Category   string   `json:"category" yaml:"category"`
	Level      string   `json:"level" yaml:"level"`
	Rating     *float64 `json:"rating" yaml:"rating"`
	Year       int      `json:"year" yaml:"year"`
	NumReviews int      `json:"num_reviews" yaml:"num_reviews"`
}

// Clean 清洗原始书籍数据，依次：
//  1. 缺失或为空串的标题、作者填 "Unknown"；缺失的评分用已有评分的中位数填充
//  2. 按原始 (标题, 作者) 去重，保留首次出现
//  3. 去除标题与作者首尾空白
//  4. 丢弃评分不在 [0, 5] 的书（没有任何评分可取中位数时，缺失评分的书也被丢弃）
//
// 评分 0 是合法值，不视为缺失。
func Clean(records []Record) []Book {
	median, hasMedian := medianRating(records)

	seen := make(map[[2]string]struct{}, len(records))
	out := make([]Book, 0, len(records))
	for _, r := range records {
		b := Book{
			ID:         r.ID,
			Title:      textOrUnknown(r.Title),
			Author:     textOrUnknown(r.Author),
			Category:   r.Category,
			Level:      r.Level,
			Year:       r.Year,
			NumReviews: r.NumReviews,
		}

		key := [2]string{b.Title, b.Author}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		b.Title = strings.TrimSpace(b.Title)
		b.Author = strings.TrimSpace(b.Author)

		switch {
		case r.Rating != nil:
			b.Rating = *r.Rating
		case hasMedian:
			b.Rating = median
		default:
			continue
		}
		if b.Rating < 0 || b.Rating > 5 {
			continue
		}
		out = append(out, b)
	}
	return out
}

func textOrUnknown(s *string) string {
	if s == nil || *s == "" {
		return unknown
	}
	return *s
}

func medianRating(records []Record) (float64, bool) {
	rs := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Rating != nil {
			rs = append(rs, *r.Rating)
		}
	}
	if len(rs) == 0 {
		return 0, false
	}
	sort.Float64s(rs)
	mid := len(rs) / 2
	if len(rs)%2 == 1 {
		return rs[mid], true
	}
	return (rs[mid-1] + rs[mid]) / 2, true
}
