package document

import (
	"errors"
	"path/filepath"
	"strings"
)

// Extractor 文本提取器接口
// 从源文档的指定页码范围（1起、双端含）提取纯文本
type Extractor interface {
	// Extract 提取[startPage, endPage]范围内的页面文本
	// 页码范围非法时返回*InvalidRangeError，读取或解析失败时返回*ExtractionError
	Extract(path string, startPage, endPage int) (string, error)
}

// ContentType 表示源文档的内容类型
type ContentType string

const (
	// PDF 文档类型
	PDF ContentType = "pdf"
	// PlainText 纯文本类型（页面以换页符分隔）
	PlainText ContentType = "plaintext"
	// Unknown 未知类型
	Unknown ContentType = "unknown"
)

// ExtractorFactory 根据文件类型创建对应的提取器
func ExtractorFactory(filePath string) (Extractor, error) {
	switch detectContentType(filePath) {
	case PDF:
		return NewPDFExtractor(), nil
	case PlainText:
		return NewPlainTextExtractor(), nil
	default:
		return nil, errors.New("unsupported document type")
	}
}

// detectContentType 根据文件扩展名检测内容类型
func detectContentType(filePath string) ContentType {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return PDF
	case ".txt":
		return PlainText
	default:
		return Unknown
	}
}

// validateRange 校验页码范围
// 约束：1 <= start <= end <= total
func validateRange(start, end, total int) error {
	if start < 1 || end > total || start > end {
		return &InvalidRangeError{StartPage: start, EndPage: end, TotalPages: total}
	}
	return nil
}

// joinPages 按顺序拼接页面文本，页面之间以空行分隔
// 无可提取文本的页面不产生任何内容
func joinPages(pages []string) string {
	var sb strings.Builder
	for _, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(page)
	}
	return sb.String()
}
