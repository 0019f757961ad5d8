package document

import (
	"fmt"
	"os"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFExtractor PDF文本提取器
// 先用pdfcpu做结构校验，再用ledongthuc/pdf逐页提取纯文本
type PDFExtractor struct {
	conf *model.Configuration
}

// NewPDFExtractor 创建一个新的PDF提取器
func NewPDFExtractor() *PDFExtractor {
	conf := model.NewDefaultConfiguration()
	// 宽松校验：很多扫描版教材的PDF并不完全合规
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFExtractor{conf: conf}
}

// Extract 提取指定页码范围的文本
func (e *PDFExtractor) Extract(path string, startPage, endPage int) (string, error) {
	// 文件必须可读，缺失时直接报提取错误
	if _, err := os.Stat(path); err != nil {
		return "", &ExtractionError{Path: path, Err: err}
	}

	// 结构校验，损坏的PDF在这里失败
	if err := api.ValidateFile(path, e.conf); err != nil {
		return "", &ExtractionError{Path: path, Err: fmt.Errorf("pdf validation failed: %v", err)}
	}

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	totalPages := reader.NumPage()
	if err := validateRange(startPage, endPage, totalPages); err != nil {
		return "", err
	}

	var pages []string
	for i := startPage; i <= endPage; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// 单页解码失败视为无可提取文本，不中断整体提取
			continue
		}
		pages = append(pages, text)
	}

	return joinPages(pages), nil
}
