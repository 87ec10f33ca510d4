package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
)

// AttachmentStore 附件存储（MinIO）
type AttachmentStore struct {
	client *minio.Client
	bucket string
}

func NewAttachmentStore(client *minio.Client, bucket string) *AttachmentStore {
	return &AttachmentStore{client: client, bucket: bucket}
}

// orderDocumentObjectName 订单单据对象路径: clients/{tenant}/purchase-orders/{orderID}/{kind}-{文件名}
// 文件名仅保留basename并替换空格，重新提交同名文件时覆盖旧对象
func orderDocumentObjectName(tenantID, orderID, kind, fileName string) string {
	name := strings.ReplaceAll(filepath.Base(fileName), " ", "_")
	return fmt.Sprintf("clients/%s/purchase-orders/%s/%s-%s", tenantID, orderID, kind, name)
}

// PutOrderDocument 上传订单单据（NF、boleto、回执等）
func (s *AttachmentStore) PutOrderDocument(ctx context.Context, tenantID, orderID, kind, fileName string, reader io.Reader, fileSize int64, contentType string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("storage not configured")
	}

	objectName := orderDocumentObjectName(tenantID, orderID, kind, fileName)

	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}

	return objectName, nil
}

// PutQuoteDocument 上传报价附件
func (s *AttachmentStore) PutQuoteDocument(ctx context.Context, tenantID, quoteID, fileName string, reader io.Reader, fileSize int64, contentType string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("storage not configured")
	}

	objectName := fmt.Sprintf("clients/%s/quotes/%s/%s",
		tenantID, quoteID, strings.ReplaceAll(filepath.Base(fileName), " ", "_"))

	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}

	return objectName, nil
}

// Get 下载对象
func (s *AttachmentStore) Get(ctx context.Context, objectName string) (io.ReadCloser, error) {
	if s.client == nil {
		return nil, fmt.Errorf("storage not configured")
	}

	object, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return object, nil
}

// Remove 删除对象
func (s *AttachmentStore) Remove(ctx context.Context, objectName string) error {
	if s.client == nil {
		return nil
	}
	return s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}

// RemoveOrderDocuments 删除订单下的全部附件
func (s *AttachmentStore) RemoveOrderDocuments(ctx context.Context, tenantID, orderID string) error {
	if s.client == nil {
		return nil
	}

	prefix := fmt.Sprintf("clients/%s/purchase-orders/%s/", tenantID, orderID)
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for obj := range objects {
		if obj.Err != nil {
			return fmt.Errorf("list objects: %w", obj.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("remove object: %w", err)
		}
	}
	return nil
}

// ValidateDocumentType 校验单据文件类型
func ValidateDocumentType(fileName, contentType string) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf", ".png", ".jpg", ".jpeg", ".xml":
		return nil
	}
	switch contentType {
	case "application/pdf", "image/png", "image/jpeg", "text/xml", "application/xml":
		return nil
	}
	return fmt.Errorf("unsupported document type: %s", ext)
}
