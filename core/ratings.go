package core

import (
	"sort"
	"strconv"
)

// LikedThreshold 是"喜欢"的最低评分。
const LikedThreshold = 4

// MinRating / MaxRating 是合法评分区间。
const (
	MinRating = 1
	MaxRating = 5
)

// Ratings 是用户对书籍的评分，key 为书籍 ID（字符串形式），value 为 1-5 星。
type Ratings map[string]int

// IsRated 判断书籍是否被评过分。
func (r Ratings) IsRated(id string) bool {
	_, ok := r[id]
	return ok
}

// IDs 返回所有评过分的书籍 ID，按数值升序（非数值 ID 排在后面，按字典序）。
func (r Ratings) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	SortIDs(ids)
	return ids
}

// Liked 返回评分 >= LikedThreshold 的书籍 ID，顺序同 IDs。
func (r Ratings) Liked() []string {
	out := make([]string, 0, len(r))
	for _, id := range r.IDs() {
		if r[id] >= LikedThreshold {
			out = append(out, id)
		}
	}
	return out
}

// ValidRating 判断评分是否在 [MinRating, MaxRating] 区间内。
func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}

// SortIDs 原地排序 ID：数值 ID 按数值升序，其余按字典序排在后面。
func SortIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, errA := strconv.ParseInt(ids[i], 10, 64)
		b, errB := strconv.ParseInt(ids[j], 10, 64)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
}

// Validate 检查每个评分都在 [MinRating, MaxRating] 区间内。
func (r Ratings) Validate() error {
	for _, id := range r.IDs() {
		if !ValidRating(r[id]) {
			return NewDomainError(ModuleRating, ErrorCodeInvalidInput,
				"rating for book "+id+" must be an integer between 1 and 5")
		}
	}
	return nil
}
