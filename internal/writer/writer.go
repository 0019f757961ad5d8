package writer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTitle 输出文档的默认标题
const DefaultTitle = "Generated Medical Questions"

// timestampLayout 文档头部生成时间的格式
const timestampLayout = "2006-01-02 15:04:05"

// Section 输出文档中的一个题目小节
type Section struct {
	ChunkOrdinal    int    // 分块序号，从1开始
	TypeDescription string // 题型描述
	Content         string // 通过校验的题目文本
}

// Heading 返回小节标题
func (s Section) Heading() string {
	return fmt.Sprintf("Section %d: %s", s.ChunkOrdinal, s.TypeDescription)
}

// Accumulator 输出文档累加器
// 每次追加后立即落盘，中途失败时已写入的小节不会丢失
type Accumulator interface {
	// Append 向文档追加一个小节并保存
	Append(section Section) error
	// Path 返回文档路径
	Path() string
}

// ErrUnsupportedFormat 输出文件扩展名不被支持
var ErrUnsupportedFormat = errors.New("unsupported output format")

// NewAccumulator 根据输出路径扩展名创建累加器
// 已存在的文档被打开并续写，标题和时间戳只在新建时写入一次
func NewAccumulator(path string, title string) (Accumulator, error) {
	if title == "" {
		title = DefaultTitle
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return NewDocxAccumulator(path, title)
	case ".md", ".markdown":
		return NewMarkdownAccumulator(path, title)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// NormalizeOutputName 规范化输出文件名
// 没有可识别扩展名时追加 .docx
func NormalizeOutputName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".docx", ".md", ".markdown":
		return name
	}
	return name + ".docx"
}

// formatTimestamp 格式化文档头部的生成时间
func formatTimestamp(t time.Time) string {
	return "Generated on " + t.Format(timestampLayout)
}
