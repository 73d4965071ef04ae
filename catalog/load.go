package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile 从 YAML 或 JSON 文件读取书籍列表，清洗后构建目录。
//
//   - book_id: 1
//     title: Deep Learning
//     author: Ian Goodfellow
//     category: Deep Learning
//     level: Advanced
//     rating: 4.5
//     year: 2016
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML/JSON 书籍列表（JSON 是 YAML 子集）。
func Parse(data []byte) (*Catalog, error) {
	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(Clean(records))
}
