// Package model 提供排序模型：输入特征，输出可比较的分数。
package model

// RankModel 是排序阶段的最小抽象。
type RankModel interface {
	Name() string
	Predict(features map[string]float64) (float64, error)
}
