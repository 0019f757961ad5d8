package document

import (
	"os"
	"strings"
)

// PlainTextExtractor 纯文本提取器
// 以换页符（\f）作为页面分隔，主要用于测试和简单文本源
type PlainTextExtractor struct{}

// NewPlainTextExtractor 创建一个新的纯文本提取器
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// Extract 提取指定页码范围的文本
func (e *PlainTextExtractor) Extract(path string, startPage, endPage int) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Err: err}
	}

	pages := strings.Split(string(content), "\f")
	if err := validateRange(startPage, endPage, len(pages)); err != nil {
		return "", err
	}

	return joinPages(pages[startPage-1 : endPage]), nil
}
