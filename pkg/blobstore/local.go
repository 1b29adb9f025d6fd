package blobstore

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalBlobStore - файловая реализация порта для разработки и тестов.
// Части multipart-загрузки складываются в служебный каталог .parts и
// склеиваются при завершении. Подписанные URL - HMAC по ключу и сроку.
type LocalBlobStore struct {
	basePath   string
	signSecret []byte
	baseURL    string
}

func NewLocalBlobStore(basePath, signSecret, baseURL string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию для хранения файлов: %w", err)
	}
	return &LocalBlobStore{
		basePath:   basePath,
		signSecret: []byte(signSecret),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalBlobStore) objectPath(key string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(key))
}

func (s *LocalBlobStore) partsDir(uploadID string) string {
	return filepath.Join(s.basePath, ".parts", uploadID)
}

func (s *LocalBlobStore) CreateMultipart(ctx context.Context, key, contentType string) (string, error) {
	uploadID := uuid.New().String()
	dir := s.partsDir(uploadID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	meta := fmt.Sprintf("%s\n%s\n", key, contentType)
	if err := os.WriteFile(filepath.Join(dir, "meta"), []byte(meta), 0o644); err != nil {
		return "", err
	}
	return uploadID, nil
}

func (s *LocalBlobStore) SignPart(ctx context.Context, key, uploadID string, partNo int, ttl time.Duration) (string, error) {
	expires := time.Now().Add(ttl).Unix()
	payload := fmt.Sprintf("part:%s:%s:%d:%d", key, uploadID, partNo, expires)
	return fmt.Sprintf("%s/upload/%s/%d?expires=%d&signature=%s",
		s.baseURL, uploadID, partNo, expires, s.sign(payload)), nil
}

// UploadKey возвращает ключ объекта, под который открыта загрузка.
func (s *LocalBlobStore) UploadKey(uploadID string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(s.partsDir(uploadID), "meta"))
	if err != nil {
		return "", fmt.Errorf("загрузка %s не найдена: %w", uploadID, err)
	}
	lines := strings.SplitN(string(raw), "\n", 2)
	return lines[0], nil
}

// VerifyPart проверяет подпись и срок действия ссылки на загрузку части.
func (s *LocalBlobStore) VerifyPart(uploadID string, partNo int, expires int64, signature string) bool {
	if time.Now().Unix() > expires {
		return false
	}
	key, err := s.UploadKey(uploadID)
	if err != nil {
		return false
	}
	payload := fmt.Sprintf("part:%s:%s:%d:%d", key, uploadID, partNo, expires)
	return hmac.Equal([]byte(s.sign(payload)), []byte(signature))
}

func (s *LocalBlobStore) WritePart(uploadID string, partNo int, data []byte) (string, error) {
	partPath := filepath.Join(s.partsDir(uploadID), strconv.Itoa(partNo))
	if err := os.WriteFile(partPath, data, 0o644); err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (s *LocalBlobStore) CompleteMultipart(ctx context.Context, key, uploadID string, parts []CompletedPart) error {
	dir := s.partsDir(uploadID)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("загрузка %s не найдена: %w", uploadID, err)
	}

	sorted := make([]CompletedPart, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PartNumber < sorted[j].PartNumber })

	dst := s.objectPath(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	for _, p := range sorted {
		data, err := os.ReadFile(filepath.Join(dir, strconv.Itoa(p.PartNumber)))
		if err != nil {
			return fmt.Errorf("часть %d не найдена: %w", p.PartNumber, err)
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	}

	return os.RemoveAll(dir)
}

func (s *LocalBlobStore) AbortMultipart(ctx context.Context, key, uploadID string) error {
	return os.RemoveAll(s.partsDir(uploadID))
}

func (s *LocalBlobStore) Put(ctx context.Context, key string, data []byte, contentType, contentDisposition string) error {
	dst := s.objectPath(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

func (s *LocalBlobStore) Head(ctx context.Context, key string) (ObjectInfo, error) {
	fi, err := os.Stat(s.objectPath(key))
	if err != nil {
		return ObjectInfo{}, err
	}

	contentType := "application/octet-stream"
	f, err := os.Open(s.objectPath(key))
	if err == nil {
		buf := make([]byte, 512)
		n, _ := f.Read(buf)
		f.Close()
		if n > 0 {
			contentType = http.DetectContentType(buf[:n])
		}
	}

	return ObjectInfo{ContentType: contentType, ContentLength: fi.Size()}, nil
}

func (s *LocalBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	return os.ReadFile(s.objectPath(key))
}

func (s *LocalBlobStore) SignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	expires := time.Now().Add(ttl).Unix()
	payload := fmt.Sprintf("get:%s:%d", key, expires)
	return fmt.Sprintf("%s/files/%s?expires=%d&signature=%s",
		s.baseURL, key, expires, s.sign(payload)), nil
}

// VerifyGet проверяет подпись и срок действия ссылки на скачивание.
func (s *LocalBlobStore) VerifyGet(key string, expires int64, signature string) bool {
	if time.Now().Unix() > expires {
		return false
	}
	payload := fmt.Sprintf("get:%s:%d", key, expires)
	return hmac.Equal([]byte(s.sign(payload)), []byte(signature))
}

func (s *LocalBlobStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.objectPath(key))
	if os.IsNotExist(err) {
		// Удаление идемпотентно.
		return nil
	}
	return err
}

func (s *LocalBlobStore) sign(payload string) string {
	mac := hmac.New(sha256.New, s.signSecret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
