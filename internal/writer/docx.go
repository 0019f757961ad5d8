package writer

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fumiama/go-docx"
)

// DocxAccumulator docx格式的文档累加器
type DocxAccumulator struct {
	path string
	doc  *docx.Docx
}

// NewDocxAccumulator 创建docx累加器
// 路径已存在时解析并续写，否则新建文档并写入标题与生成时间
func NewDocxAccumulator(path string, title string) (*DocxAccumulator, error) {
	info, err := os.Stat(path)
	if err == nil && info.Size() > 0 {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open output document: %w", err)
		}
		defer file.Close()

		doc, err := docx.Parse(file, info.Size())
		if err != nil {
			return nil, fmt.Errorf("failed to parse output document: %w", err)
		}
		return &DocxAccumulator{path: path, doc: doc}, nil
	}

	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().AddText(title).Size("36").Bold()
	doc.AddParagraph().AddText(formatTimestamp(time.Now()))

	acc := &DocxAccumulator{path: path, doc: doc}
	if err := acc.flush(); err != nil {
		return nil, err
	}
	return acc, nil
}

// Append 追加一个小节并保存文档
func (a *DocxAccumulator) Append(section Section) error {
	a.doc.AddParagraph().AddText(section.Heading()).Size("28").Bold()
	for _, line := range strings.Split(section.Content, "\n") {
		a.doc.AddParagraph().AddText(line)
	}
	return a.flush()
}

// Path 返回文档路径
func (a *DocxAccumulator) Path() string {
	return a.path
}

// flush 将文档完整写回磁盘
func (a *DocxAccumulator) flush() error {
	file, err := os.Create(a.path)
	if err != nil {
		return fmt.Errorf("failed to create output document: %w", err)
	}
	defer file.Close()

	if _, err := a.doc.WriteTo(file); err != nil {
		return fmt.Errorf("failed to write output document: %w", err)
	}
	return nil
}
