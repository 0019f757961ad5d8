package writer

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownAccumulator Markdown格式的文档累加器
type MarkdownAccumulator struct {
	path  string
	title string
}

// NewMarkdownAccumulator 创建Markdown累加器
// 已有文件中存在一级标题时直接续写，否则先写入文档头部
func NewMarkdownAccumulator(path string, title string) (*MarkdownAccumulator, error) {
	acc := &MarkdownAccumulator{path: path, title: title}

	content, err := os.ReadFile(path)
	if err == nil && hasTopHeading(content) {
		return acc, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read output document: %w", err)
	}

	header := fmt.Sprintf("# %s\n\n%s\n", title, formatTimestamp(time.Now()))
	if err := os.WriteFile(path, []byte(header), 0644); err != nil {
		return nil, fmt.Errorf("failed to write output document: %w", err)
	}
	return acc, nil
}

// Append 追加一个小节并保存文档
func (a *MarkdownAccumulator) Append(section Section) error {
	file, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output document: %w", err)
	}
	defer file.Close()

	block := fmt.Sprintf("\n## %s\n\n%s\n", section.Heading(), strings.TrimSpace(section.Content))
	if _, err := file.WriteString(block); err != nil {
		return fmt.Errorf("failed to write output document: %w", err)
	}
	return nil
}

// Path 返回文档路径
func (a *MarkdownAccumulator) Path() string {
	return a.path
}

// hasTopHeading 判断Markdown内容中是否已有一级标题
func hasTopHeading(content []byte) bool {
	mdParser := parser.NewWithExtensions(parser.CommonExtensions)
	doc := mdParser.Parse(content)

	found := false
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if heading, ok := node.(*ast.Heading); ok && entering && heading.Level == 1 {
			found = true
			return ast.Terminate
		}
		return ast.GoToNext
	})
	return found
}
