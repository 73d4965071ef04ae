package model

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/goccy/go-json"
)

// 特征名，由 feature.BookEnrichNode 与 feature.PreferenceNode 写入；
// recall_score 由 recall.Fanout 的 weighted 合并写入，predicted_rating 由 recall.SVDRecall 写入。
const (
	FeatureCategoryMatch   = "category_match"
	FeatureLevelMatch      = "level_match"
	FeatureRating          = "rating"
	FeatureRecent          = "recent"
	FeatureYear            = "year"
	FeatureNumReviews      = "num_reviews"
	FeatureRecallScore     = "recall_score"
	FeaturePredictedRating = "predicted_rating"
)

// 输出变换。
const (
	LinkIdentity = "identity"
	LinkSigmoid  = "sigmoid"
)

// HeuristicWeights 是偏好打分的权重：
//
//	score = 50·category_match + 20·level_match + 10·rating + 5·recent
func HeuristicWeights() map[string]float64 {
	return map[string]float64{
		FeatureCategoryMatch: 50,
		FeatureLevelMatch:    20,
		FeatureRating:        10,
		FeatureRecent:        5,
	}
}

// LinearModel 是线性加权模型：z = Bias + Σ Weight_i·Feature_i。
// Link 为 sigmoid 时输出 1/(1+e^-z)（即逻辑回归），默认原样输出。
type LinearModel struct {
	Bias    float64            `json:"bias"`
	Weights map[string]float64 `json:"weights"`
	Link    string             `json:"link,omitempty"`

	keys []string
}

// NewLinearModel 创建线性模型，Link 非法时报错。
func NewLinearModel(bias float64, weights map[string]float64, link string) (*LinearModel, error) {
	m := &LinearModel{Bias: bias, Weights: weights, Link: link}
	if err := m.init(); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadLinearModel 从 JSON 文件加载：{"bias": 0, "weights": {...}, "link": "identity"}。
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	if err := m.init(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *LinearModel) init() error {
	switch m.Link {
	case "":
		m.Link = LinkIdentity
	case LinkIdentity, LinkSigmoid:
	default:
		return fmt.Errorf("unknown link %q", m.Link)
	}
	// 固定求和顺序，保证相同输入得到逐位相同的分数
	m.keys = make([]string, 0, len(m.Weights))
	for k := range m.Weights {
		m.keys = append(m.keys, k)
	}
	sort.Strings(m.keys)
	return nil
}

func (m *LinearModel) Name() string {
	if m.Link == LinkSigmoid {
		return "lr"
	}
	return "linear"
}

func (m *LinearModel) Predict(features map[string]float64) (float64, error) {
	if m.keys == nil && len(m.Weights) > 0 {
		if err := m.init(); err != nil {
			return 0, err
		}
	}
	z := m.Bias
	for _, k := range m.keys {
		z += m.Weights[k] * features[k]
	}
	if m.Link == LinkSigmoid {
		return 1 / (1 + math.Exp(-z)), nil
	}
	return z, nil
}
