package blobstore

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ограничения контракта загрузки.
const (
	DefaultPartSize = int64(50) << 20 // 50 MiB
	MaxObjectSize   = int64(10) << 30 // 10 GiB
)

type ObjectInfo struct {
	ContentType   string
	ContentLength int64
}

type CompletedPart struct {
	PartNumber int
	ETag       string
}

// BlobStoreInterface - порт внешнего блоб-хранилища, который потребляет ядро.
// Хранилище считается eventually-consistent: только что записанный объект
// перечитывается фоновым воркером, а не синхронным путём.
type BlobStoreInterface interface {
	CreateMultipart(ctx context.Context, key, contentType string) (uploadID string, err error)
	SignPart(ctx context.Context, key, uploadID string, partNo int, ttl time.Duration) (url string, err error)
	CompleteMultipart(ctx context.Context, key, uploadID string, parts []CompletedPart) error
	AbortMultipart(ctx context.Context, key, uploadID string) error

	Put(ctx context.Context, key string, data []byte, contentType, contentDisposition string) error
	Head(ctx context.Context, key string) (ObjectInfo, error)
	Get(ctx context.Context, key string) ([]byte, error)
	SignGet(ctx context.Context, key string, ttl time.Duration) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// KeyForTask строит ключ вида tasks/{id}/YYYY/MM/DD/{random}{ext}.
func KeyForTask(taskID uint64, filename string) string {
	now := time.Now().UTC()
	return fmt.Sprintf("tasks/%d/%s/%s%s",
		taskID, now.Format("2006/01/02"), randomName(), safeExt(filename))
}

// KeyForReport строит ключ вида reports/{task_id}/{report_id}/{random}{ext}.
func KeyForReport(taskID, reportID uint64, filename string) string {
	return fmt.Sprintf("reports/%d/%d/%s%s",
		taskID, reportID, randomName(), safeExt(filename))
}

func randomName() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func safeExt(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	// Расширение используем только как подсказку, произвольные суффиксы отбрасываем.
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}
