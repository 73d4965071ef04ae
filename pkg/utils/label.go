package utils

import (
	"sort"
	"strings"
)

// Label 是推荐链路中的一等公民：可解释、可追踪、可透传。
// Value 与 Source 的语义由业务自定义；这里只提供标准化的合并规则。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / feature / rank / rerank ...
}

// MergeLabel 用于合并同名 Label，遵循"保留历史、可追踪"的默认策略。
// - Value: 以 '|' 累积，重复值不再追加
// - Source: 以 ',' 累积
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	if !containsPart(existing.Value, incoming.Value, "|") {
		merged.Value = existing.Value + "|" + incoming.Value
	}
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "" || containsPart(existing.Source, incoming.Source, ","):
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}

// Explain 把 labels 渲染成稳定顺序的 "k=v" 串，用于日志与 CLI 展示。
func Explain(labels map[string]Label) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+labels[k].Value)
	}
	return strings.Join(parts, " ")
}

func containsPart(joined, part, sep string) bool {
	for _, p := range strings.Split(joined, sep) {
		if p == part {
			return true
		}
	}
	return false
}
