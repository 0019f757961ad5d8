package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalArchive 本地文件系统归档实现
type LocalArchive struct {
	basePath string // 基础存储路径
}

// LocalConfig 本地归档配置
type LocalConfig struct {
	Path string // 本地存储路径
}

// NewLocalArchive 创建本地归档实例
func NewLocalArchive(cfg LocalConfig) (*LocalArchive, error) {
	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %v", err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %v", err)
	}

	return &LocalArchive{
		basePath: absPath,
	}, nil
}

// Save 归档文件到本地文件系统
// 按年月日建立目录结构，文件名用唯一标识符替换
func (a *LocalArchive) Save(reader io.Reader, filename string) (FileInfo, error) {
	id := uuid.New().String()
	ext := filepath.Ext(filename)

	now := time.Now()
	datePath := filepath.Join(fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()))

	dirPath := filepath.Join(a.basePath, datePath)
	filePath := filepath.Join(dirPath, id+ext)

	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return FileInfo{}, fmt.Errorf("failed to create directory: %v", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to create file: %v", err)
	}
	defer file.Close()

	size, err := io.Copy(file, reader)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to write file: %v", err)
	}

	return FileInfo{
		ID:       id,
		Name:     filename,
		Size:     size,
		MimeType: getMimeType(filename),
		Path:     filepath.Join(datePath, id+ext),
	}, nil
}

// Get 获取归档文件内容
func (a *LocalArchive) Get(id string) (io.ReadCloser, error) {
	filePath, err := a.findFilePathByID(id)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %v", err)
	}
	return file, nil
}

// Delete 删除归档文件
func (a *LocalArchive) Delete(id string) error {
	filePath, err := a.findFilePathByID(id)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %v", err)
	}
	return nil
}

// List 列出所有归档文件
func (a *LocalArchive) List() ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.Walk(a.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(a.basePath, path)
		if err != nil {
			return err
		}

		fileName := filepath.Base(path)
		id := strings.TrimSuffix(fileName, filepath.Ext(fileName))

		files = append(files, FileInfo{
			ID:       id,
			Name:     fileName,
			Size:     info.Size(),
			MimeType: getMimeType(fileName),
			Path:     relPath,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %v", err)
	}

	return files, nil
}

// Exists 检查归档文件是否存在
func (a *LocalArchive) Exists(id string) (bool, error) {
	_, err := a.findFilePathByID(id)
	if err != nil {
		if os.IsNotExist(err) || strings.Contains(err.Error(), "not found") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// findFilePathByID 根据ID查找归档文件路径
func (a *LocalArchive) findFilePathByID(id string) (string, error) {
	var filePath string
	var found bool

	err := filepath.Walk(a.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			fileName := filepath.Base(path)
			fileID := strings.TrimSuffix(fileName, filepath.Ext(fileName))
			if fileID == id {
				filePath = path
				found = true
				return io.EOF // 用特殊错误来中断遍历
			}
		}
		return nil
	})
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to walk archive directory: %v", err)
	}

	if !found {
		return "", fmt.Errorf("file not found: %s", id)
	}
	return filePath, nil
}
