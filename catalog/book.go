// Package catalog 维护书籍目录：内置 25 本技术书、文件加载、清洗、查询与统计。
package catalog

import "strconv"

// Book 是目录中的一本书，JSON 字段与 HTTP API 保持一致。
type Book struct {
	ID         int     `json:"book_id" yaml:"book_id" validate:"gt=0"`
	Title      string  `json:"title" yaml:"title" validate:"required"`
	Author     string  `json:"author" yaml:"author" validate:"required"`
	Category   string  `json:"category" yaml:"category" validate:"required"`
	Level      string  `json:"level" yaml:"level" validate:"required"`
	Rating     float64 `json:"rating" yaml:"rating" validate:"gte=0,lte=5"`
	Year       int     `json:"year" yaml:"year" validate:"gte=0"`
	NumReviews int     `json:"num_reviews,omitempty" yaml:"num_reviews"`
}

// ItemID 返回推荐链路中使用的字符串 ID。
func (b Book) ItemID() string {
	return strconv.Itoa(b.ID)
}

// Content 是内容相似度使用的文本：标题 + 分类 + 难度。
func (b Book) Content() string {
	return b.Title + " " + b.Category + " " + b.Level
}

// Vars 返回 CEL 表达式中 book 变量的取值。
func (b Book) Vars() map[string]any {
	return map[string]any{
		"id":          b.ID,
		"title":       b.Title,
		"author":      b.Author,
		"category":    b.Category,
		"level":       b.Level,
		"rating":      b.Rating,
		"year":        b.Year,
		"num_reviews": b.NumReviews,
	}
}
