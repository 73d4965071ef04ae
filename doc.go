// Package bookrec 是技术书籍推荐系统。
//
// 设计要点：
// - Pipeline-first: 每种推荐方法是一条 YAML 定义的 Pipeline（Recall → Filter → Feature → Rank → ReRank）
// - Labels-first: labels 全链路透传，推荐结果带上召回来源等解释信息
// - 本地与远程同一接口：client.Recommender 既可以是进程内引擎，也可以是 HTTP 客户端
//
// 子包：
//
//	catalog    书籍目录（内置 25 本，可从文件加载）
//	recommend  推荐引擎
//	rating     用户评分
//	server     HTTP API
//	client     远程客户端与进程内实现
package bookrec

import (
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/recommend"
)

// 轻量 facade：便于直接 import "bookrec" 使用核心抽象。
type (
	Engine         = recommend.Engine
	Options        = recommend.Options
	Request        = recommend.Request
	Recommendation = recommend.Recommendation

	Pipeline = pipeline.Pipeline
	Node     = pipeline.Node
	Kind     = pipeline.Kind
)

const (
	KindRecall  = pipeline.KindRecall
	KindFilter  = pipeline.KindFilter
	KindFeature = pipeline.KindFeature
	KindRank    = pipeline.KindRank
	KindReRank  = pipeline.KindReRank
)

// New 等同于 recommend.New。
var New = recommend.New
