package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioArchive MinIO归档实现
type MinioArchive struct {
	client     *minio.Client // MinIO客户端
	bucketName string        // 存储桶名称
}

// MinioConfig MinIO归档配置
type MinioConfig struct {
	Endpoint  string // MinIO服务端点
	AccessKey string // 访问密钥ID
	SecretKey string // 秘密访问密钥
	UseSSL    bool   // 是否使用SSL
	Bucket    string // 存储桶名称
}

// NewMinioArchive 创建MinIO归档实例
// 存储桶不存在时自动创建
func NewMinioArchive(cfg MinioConfig) (*MinioArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %v", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %v", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %v", err)
		}
	}

	return &MinioArchive{
		client:     client,
		bucketName: cfg.Bucket,
	}, nil
}

// Save 归档文件到MinIO
func (a *MinioArchive) Save(reader io.Reader, filename string) (FileInfo, error) {
	id := uuid.New().String()
	ext := filepath.Ext(filename)

	now := time.Now()
	datePath := fmt.Sprintf("%04d/%02d/%02d", now.Year(), now.Month(), now.Day())
	objectName := fmt.Sprintf("%s/%s%s", datePath, id, ext)

	// 读取文件内容到内存，以获取大小
	// 输出文档体量不大，整体读入可以接受
	content, err := io.ReadAll(reader)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to read file content: %v", err)
	}

	contentType := getMimeType(filename)
	_, err = a.client.PutObject(
		context.Background(),
		a.bucketName,
		objectName,
		bytes.NewReader(content),
		int64(len(content)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to upload file: %v", err)
	}

	return FileInfo{
		ID:       id,
		Name:     filename,
		Size:     int64(len(content)),
		MimeType: contentType,
		Path:     objectName,
	}, nil
}

// Get 获取MinIO中的归档文件
func (a *MinioArchive) Get(id string) (io.ReadCloser, error) {
	objectName, err := a.findObjectByID(id)
	if err != nil {
		return nil, err
	}

	object, err := a.client.GetObject(context.Background(), a.bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %v", err)
	}
	return object, nil
}

// Delete 删除MinIO中的归档文件
func (a *MinioArchive) Delete(id string) error {
	objectName, err := a.findObjectByID(id)
	if err != nil {
		return err
	}

	if err := a.client.RemoveObject(context.Background(), a.bucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %v", err)
	}
	return nil
}

// List 列出所有归档文件
func (a *MinioArchive) List() ([]FileInfo, error) {
	var files []FileInfo

	ctx := context.Background()
	for object := range a.client.ListObjects(ctx, a.bucketName, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %v", object.Err)
		}

		fileName := filepath.Base(object.Key)
		id := strings.TrimSuffix(fileName, filepath.Ext(fileName))

		files = append(files, FileInfo{
			ID:       id,
			Name:     fileName,
			Size:     object.Size,
			MimeType: getMimeType(fileName),
			Path:     object.Key,
		})
	}

	return files, nil
}

// Exists 检查归档文件是否存在
func (a *MinioArchive) Exists(id string) (bool, error) {
	_, err := a.findObjectByID(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// findObjectByID 根据ID查找对象名
func (a *MinioArchive) findObjectByID(id string) (string, error) {
	ctx := context.Background()
	for object := range a.client.ListObjects(ctx, a.bucketName, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return "", fmt.Errorf("failed to list objects: %v", object.Err)
		}

		fileName := filepath.Base(object.Key)
		if strings.TrimSuffix(fileName, filepath.Ext(fileName)) == id {
			return object.Key, nil
		}
	}
	return "", fmt.Errorf("file not found: %s", id)
}
