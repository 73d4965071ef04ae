package recommend

import (
	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/core"
)

// Request 是一次推荐请求。
type Request struct {
	// Ratings 书籍 ID -> 星级；为空且 UserID 不为空时读取已保存的评分
	Ratings core.Ratings `json:"ratings"`
	Method  string       `json:"method,omitempty"`
	N       int          `json:"n,omitempty"`
	UserID  string       `json:"user_id,omitempty"`
}

// Recommendation 是书籍字段加上推荐分数，JSON 平铺输出。
type Recommendation struct {
	catalog.Book
	Score  float64           `json:"score"`
	Labels map[string]string `json:"labels,omitempty"`
}

func labelValues(it *core.Item) map[string]string {
	if len(it.Labels) == 0 {
		return nil
	}
	out := make(map[string]string, len(it.Labels))
	for k, v := range it.Labels {
		out[k] = v.Value
	}
	return out
}
