package archive

import (
	"io"
	"path/filepath"
	"strings"
)

// FileInfo 归档文件元数据结构
type FileInfo struct {
	ID       string // 文件唯一标识符
	Name     string // 原始文件名
	Size     int64  // 文件大小(字节)
	MimeType string // 文件MIME类型
	Path     string // 内部存储路径(实现相关)
}

// Archive 输出文档归档接口
// 生成任务完成后把输出文档和来源材料存档，可以有不同实现(本地文件系统、MinIO等)
type Archive interface {
	// Save 归档文件并返回文件信息
	Save(reader io.Reader, filename string) (FileInfo, error)

	// Get 获取归档文件内容
	Get(id string) (io.ReadCloser, error)

	// Delete 删除归档文件
	Delete(id string) error

	// List 列出所有归档文件
	List() ([]FileInfo, error)

	// Exists 检查归档文件是否存在
	Exists(id string) (bool, error)
}

// getMimeType 根据文件扩展名推断MIME类型
func getMimeType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
