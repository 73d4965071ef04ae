package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/dsl"
)

// AllCategories 表示不按分类过滤。
const AllCategories = "All"

// ErrBookNotFound 表示书籍不存在。
var ErrBookNotFound = core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound, "Book not found")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Catalog 是只读的书籍目录，可并发读取。
type Catalog struct {
	books []Book
	index map[int]int // book id -> 目录位置
}

// New 校验并构建目录，ID 必须唯一。
func New(books []Book) (*Catalog, error) {
	c := &Catalog{
		books: make([]Book, len(books)),
		index: make(map[int]int, len(books)),
	}
	copy(c.books, books)
	for i, b := range c.books {
		if err := validate.Struct(b); err != nil {
			return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
				fmt.Sprintf("book #%d: %v", i, err))
		}
		if _, dup := c.index[b.ID]; dup {
			return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
				fmt.Sprintf("duplicate book_id %d", b.ID))
		}
		c.index[b.ID] = i
	}
	return c, nil
}

// Len 返回书籍数量。
func (c *Catalog) Len() int { return len(c.books) }

// Books 返回目录顺序的全部书籍副本。
func (c *Catalog) Books() []Book {
	out := make([]Book, len(c.books))
	copy(out, c.books)
	return out
}

// Get 按 ID 获取书籍。
func (c *Catalog) Get(id int) (Book, error) {
	i, ok := c.index[id]
	if !ok {
		return Book{}, ErrBookNotFound
	}
	return c.books[i], nil
}

// Lookup 按推荐链路中的字符串 ID 获取书籍。
func (c *Catalog) Lookup(itemID string) (Book, bool) {
	id, err := strconv.Atoi(itemID)
	if err != nil {
		return Book{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Book{}, false
	}
	return c.books[i], true
}

// Position 返回书籍在目录中的位置，不存在时返回 -1。
func (c *Catalog) Position(itemID string) int {
	id, err := strconv.Atoi(itemID)
	if err != nil {
		return -1
	}
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// Query 是 List 的过滤条件，零值返回全部书籍。
type Query struct {
	// Category 精确匹配；空或 "All" 不过滤
	Category string
	// Search 对标题与作者做大小写不敏感的子串匹配
	Search string
	// Where 是 book 变量上的 CEL 布尔表达式，例如 book.year >= 2020
	Where string
}

// List 按目录顺序返回满足条件的书籍。
func (c *Catalog) List(q Query) ([]Book, error) {
	var where *dsl.Program
	if q.Where != "" {
		p, err := dsl.Compile(q.Where)
		if err != nil {
			return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "invalid where: "+err.Error())
		}
		where = p
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]Book, 0, len(c.books))
	for _, b := range c.books {
		if q.Category != "" && q.Category != AllCategories && b.Category != q.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Title), search) &&
			!strings.Contains(strings.ToLower(b.Author), search) {
			continue
		}
		if where != nil {
			ok, err := where.Bool(map[string]any{"book": b.Vars()})
			if err != nil {
				return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "invalid where: "+err.Error())
			}
			if !ok {
				continue
			}
		}
		out = append(out, b)
	}
	return out, nil
}

// Categories 返回 ["All", 去重后按字典序排列的分类...]。
func (c *Catalog) Categories() []string {
	return append([]string{AllCategories}, c.distinct(func(b Book) string { return b.Category })...)
}

// Levels 返回去重后按字典序排列的难度。
func (c *Catalog) Levels() []string {
	return c.distinct(func(b Book) string { return b.Level })
}

func (c *Catalog) distinct(field func(Book) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, b := range c.books {
		v := field(b)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
