package core

import (
	"sort"
	"time"
)

// UserProfile 是由评分推导出的偏好画像。
//
// 喜欢（评分 >= 4）的书籍贡献类别与难度偏好：
//   - Interests：类别 -> 喜欢次数
//   - PreferLevels：难度 -> 喜欢次数
//
// PreferredCategories 按喜欢次数降序，次数相同时按首次出现顺序（调用方按目录顺序 Observe）。
type UserProfile struct {
	UserID  string
	Ratings Ratings

	Interests    map[string]float64
	PreferLevels map[string]float64

	categoryOrder []string
	levelOrder    []string

	UpdateTime time.Time
}

// NewUserProfile 创建一个空画像。
func NewUserProfile(userID string, ratings Ratings) *UserProfile {
	return &UserProfile{
		UserID:       userID,
		Ratings:      ratings,
		Interests:    make(map[string]float64),
		PreferLevels: make(map[string]float64),
		UpdateTime:   time.Now(),
	}
}

// ObserveLiked 记录一本被喜欢的书的类别与难度。
func (p *UserProfile) ObserveLiked(category, level string) {
	if _, ok := p.Interests[category]; !ok {
		p.categoryOrder = append(p.categoryOrder, category)
	}
	p.Interests[category]++
	if _, ok := p.PreferLevels[level]; !ok {
		p.levelOrder = append(p.levelOrder, level)
	}
	p.PreferLevels[level]++
	p.UpdateTime = time.Now()
}

// HasPreferences 是否至少有一本喜欢的书。
func (p *UserProfile) HasPreferences() bool {
	return p != nil && len(p.Interests) > 0
}

// PreferredCategories 返回偏好类别（次数降序，稳定于首次出现顺序）。
func (p *UserProfile) PreferredCategories() []string {
	return rankByCount(p.categoryOrder, p.Interests)
}

// PreferredLevels 返回偏好难度（次数降序，稳定于首次出现顺序）。
func (p *UserProfile) PreferredLevels() []string {
	return rankByCount(p.levelOrder, p.PreferLevels)
}

// CategoryRank 返回类别在偏好列表中的位置（从 0 开始）。
func (p *UserProfile) CategoryRank(category string) (int, bool) {
	if p == nil {
		return 0, false
	}
	for i, c := range p.PreferredCategories() {
		if c == category {
			return i, true
		}
	}
	return 0, false
}

// PrefersCategory 类别是否在偏好中。
func (p *UserProfile) PrefersCategory(category string) bool {
	if p == nil {
		return false
	}
	_, ok := p.Interests[category]
	return ok
}

// PrefersLevel 难度是否在偏好中。
func (p *UserProfile) PrefersLevel(level string) bool {
	if p == nil {
		return false
	}
	_, ok := p.PreferLevels[level]
	return ok
}

func rankByCount(order []string, counts map[string]float64) []string {
	out := make([]string, len(order))
	copy(out, order)
	sort.SliceStable(out, func(i, j int) bool {
		return counts[out[i]] > counts[out[j]]
	})
	return out
}
