package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestPDF 生成一个三页的测试PDF
func createTestPDF(t *testing.T, dir string) string {
	t.Helper()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)

	pageTexts := []string{
		"Pneumonia presents with lobar consolidation on chest radiographs",
		"Tuberculosis shows upper lobe cavitation and tree in bud nodules",
		"Pulmonary embolism may produce a wedge shaped peripheral opacity",
	}
	for _, text := range pageTexts {
		pdf.AddPage()
		pdf.MultiCell(180, 8, text, "", "L", false)
	}

	path := filepath.Join(dir, "radiology.pdf")
	require.NoError(t, pdf.OutputFileAndClose(path))
	return path
}

// TestPDFExtractorRangeValidation 测试页码范围校验
func TestPDFExtractorRangeValidation(t *testing.T) {
	path := createTestPDF(t, t.TempDir())
	extractor := NewPDFExtractor()

	t.Run("valid ranges never fail", func(t *testing.T) {
		ranges := [][2]int{{1, 1}, {1, 3}, {2, 3}, {3, 3}}
		for _, r := range ranges {
			text, err := extractor.Extract(path, r[0], r[1])
			assert.NoError(t, err, "范围%d-%d应合法", r[0], r[1])
			assert.NotEmpty(t, text)
		}
	})

	t.Run("invalid ranges fail with InvalidRangeError", func(t *testing.T) {
		ranges := [][2]int{{0, 2}, {2, 1}, {1, 4}, {-1, 1}, {4, 5}}
		for _, r := range ranges {
			_, err := extractor.Extract(path, r[0], r[1])
			require.Error(t, err, "范围%d-%d应非法", r[0], r[1])

			var rangeErr *InvalidRangeError
			require.ErrorAs(t, err, &rangeErr)
			assert.Equal(t, 3, rangeErr.TotalPages, "错误应携带有效页数上限")
		}
	})

	t.Run("missing file fails with ExtractionError", func(t *testing.T) {
		_, err := extractor.Extract("/nonexistent/file.pdf", 1, 1)
		require.Error(t, err)

		var extErr *ExtractionError
		assert.ErrorAs(t, err, &extErr)
	})

	t.Run("corrupt file fails with ExtractionError", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "broken.pdf")
		require.NoError(t, os.WriteFile(bad, []byte("not a pdf at all"), 0644))

		_, err := extractor.Extract(bad, 1, 1)
		require.Error(t, err)

		var extErr *ExtractionError
		assert.ErrorAs(t, err, &extErr)
	})
}

// TestPDFExtractorContent 测试提取内容
func TestPDFExtractorContent(t *testing.T) {
	path := createTestPDF(t, t.TempDir())
	extractor := NewPDFExtractor()

	t.Run("single page", func(t *testing.T) {
		text, err := extractor.Extract(path, 2, 2)
		assert.NoError(t, err)
		assert.Contains(t, text, "Tuberculosis")
		assert.NotContains(t, text, "Pneumonia")
	})

	t.Run("page order preserved", func(t *testing.T) {
		text, err := extractor.Extract(path, 1, 3)
		assert.NoError(t, err)
		assert.Contains(t, text, "Pneumonia")
		assert.Contains(t, text, "embolism")
		assert.Less(t,
			indexOf(text, "Pneumonia"), indexOf(text, "Tuberculosis"),
			"页面文本应按页码顺序拼接")
	})
}

// TestPlainTextExtractor 测试纯文本提取器
func TestPlainTextExtractor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	content := "page one text\fpage two text\f\fpage four text"
	// 第三页为空，不应产生内容
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	extractor := NewPlainTextExtractor()

	t.Run("full range", func(t *testing.T) {
		text, err := extractor.Extract(path, 1, 4)
		assert.NoError(t, err)
		assert.Equal(t, "page one text\n\npage two text\n\npage four text", text,
			"页面之间以空行分隔，空页不产生内容")
	})

	t.Run("sub range", func(t *testing.T) {
		text, err := extractor.Extract(path, 2, 3)
		assert.NoError(t, err)
		assert.Equal(t, "page two text", text)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := extractor.Extract(path, 1, 5)
		var rangeErr *InvalidRangeError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, 4, rangeErr.TotalPages)
	})
}

// TestExtractorFactory 测试按扩展名选择提取器
func TestExtractorFactory(t *testing.T) {
	e, err := ExtractorFactory("book.pdf")
	assert.NoError(t, err)
	assert.IsType(t, &PDFExtractor{}, e)

	e, err = ExtractorFactory("notes.txt")
	assert.NoError(t, err)
	assert.IsType(t, &PlainTextExtractor{}, e)

	_, err = ExtractorFactory("image.png")
	assert.Error(t, err)
}

// indexOf strings.Index的简单包装，便于断言可读性
func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
