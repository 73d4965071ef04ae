// Package feature 负责书籍特征：TF-IDF 文本向量、向量索引、书籍特征注入与偏好匹配特征。
package feature

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern 取长度 >= 2 的单词。
var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// Tokenize 小写化、切词并去掉英文停用词。
func Tokenize(doc string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(doc), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := englishStopWords[tok]; !stop {
			out = append(out, tok)
		}
	}
	return out
}

// TFIDF 是拟合在固定语料上的 TF-IDF 向量化器。
//
//	idf(t) = ln((1+n)/(1+df(t))) + 1
//	tfidf(t, d) = count(t, d) · idf(t)，再做 L2 归一化
//
// 归一化后两个向量的内积即为余弦相似度。
type TFIDF struct {
	vocab map[string]int
	terms []string
	idf   []float64
}

// FitTFIDF 在 docs 上拟合词表与 idf，词表按字典序编号。
func FitTFIDF(docs []string) *TFIDF {
	df := make(map[string]int)
	for _, d := range docs {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(d) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	t := &TFIDF{vocab: make(map[string]int, len(df))}
	for term := range df {
		t.terms = append(t.terms, term)
	}
	sort.Strings(t.terms)
	n := float64(len(docs))
	t.idf = make([]float64, len(t.terms))
	for i, term := range t.terms {
		t.vocab[term] = i
		t.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return t
}

// Dimension 返回词表大小。
func (t *TFIDF) Dimension() int { return len(t.terms) }

// Terms 返回按编号排列的词表。
func (t *TFIDF) Terms() []string {
	return append([]string(nil), t.terms...)
}

// Transform 把文本转为 L2 归一化的 TF-IDF 向量；词表外的词被忽略，全部未命中时返回零向量。
func (t *TFIDF) Transform(doc string) []float64 {
	vec := make([]float64, len(t.terms))
	for _, tok := range Tokenize(doc) {
		if i, ok := t.vocab[tok]; ok {
			vec[i]++
		}
	}
	var norm float64
	for i := range vec {
		vec[i] *= t.idf[i]
		norm += vec[i] * vec[i]
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
