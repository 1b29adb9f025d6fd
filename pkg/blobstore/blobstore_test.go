package blobstore

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyForTask(t *testing.T) {
	key := KeyForTask(42, "фото объекта.JPG")

	assert.True(t, strings.HasPrefix(key, "tasks/42/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
	assert.NotContains(t, key, " ")

	// Ключи уникальны даже для одного имени файла.
	assert.NotEqual(t, key, KeyForTask(42, "фото объекта.JPG"))
}

func TestKeyForReport(t *testing.T) {
	key := KeyForReport(42, 7, "report.pdf")
	assert.True(t, strings.HasPrefix(key, "reports/42/7/"), key)
	assert.True(t, strings.HasSuffix(key, ".pdf"), key)
}

func TestSafeExt(t *testing.T) {
	assert.Equal(t, ".png", safeExt("image.PNG"))
	assert.Equal(t, "", safeExt("noext"))
	assert.Equal(t, "", safeExt("evil.веществодлинноерасширение"))
}

func newTestStore(t *testing.T) *LocalBlobStore {
	t.Helper()
	store, err := NewLocalBlobStore(t.TempDir(), "test-secret", "http://localhost:8080/blobs")
	require.NoError(t, err)
	return store
}

func TestLocalMultipartLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	uploadID, err := store.CreateMultipart(ctx, "tasks/1/2026/01/01/abc.bin", "application/octet-stream")
	require.NoError(t, err)
	require.NotEmpty(t, uploadID)

	key, err := store.UploadKey(uploadID)
	require.NoError(t, err)
	assert.Equal(t, "tasks/1/2026/01/01/abc.bin", key)

	etag1, err := store.WritePart(uploadID, 1, []byte("hello "))
	require.NoError(t, err)
	etag2, err := store.WritePart(uploadID, 2, []byte("world"))
	require.NoError(t, err)
	assert.NotEqual(t, etag1, etag2)

	// Части передаются в произвольном порядке, склейка сортирует.
	err = store.CompleteMultipart(ctx, key, uploadID, []CompletedPart{
		{PartNumber: 2, ETag: etag2},
		{PartNumber: 1, ETag: etag1},
	})
	require.NoError(t, err)

	data, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	info, err := store.Head(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(len("hello world")), info.ContentLength)
}

func TestLocalAbortMultipart(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	uploadID, err := store.CreateMultipart(ctx, "tasks/1/x.bin", "application/octet-stream")
	require.NoError(t, err)
	_, err = store.WritePart(uploadID, 1, []byte("data"))
	require.NoError(t, err)

	require.NoError(t, store.AbortMultipart(ctx, "tasks/1/x.bin", uploadID))

	err = store.CompleteMultipart(ctx, "tasks/1/x.bin", uploadID, []CompletedPart{{PartNumber: 1}})
	assert.Error(t, err, "после abort загрузка не завершается")
}

func TestLocalSignatures(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Put(ctx, "tasks/1/a.txt", []byte("x"), "text/plain", ""))

	t.Run("подпись скачивания", func(t *testing.T) {
		signedURL, err := store.SignGet(ctx, "tasks/1/a.txt", time.Minute)
		require.NoError(t, err)

		expires, signature := parseSigned(t, signedURL)
		assert.True(t, store.VerifyGet("tasks/1/a.txt", expires, signature))
		assert.False(t, store.VerifyGet("tasks/1/a.txt", expires, "forged"))
		assert.False(t, store.VerifyGet("tasks/1/other.txt", expires, signature))
		// Истёкший срок действия.
		assert.False(t, store.VerifyGet("tasks/1/a.txt", time.Now().Add(-time.Minute).Unix(), signature))
	})

	t.Run("подпись части загрузки", func(t *testing.T) {
		uploadID, err := store.CreateMultipart(ctx, "tasks/1/b.bin", "application/octet-stream")
		require.NoError(t, err)

		signedURL, err := store.SignPart(ctx, "tasks/1/b.bin", uploadID, 3, time.Minute)
		require.NoError(t, err)

		expires, signature := parseSigned(t, signedURL)
		assert.True(t, store.VerifyPart(uploadID, 3, expires, signature))
		assert.False(t, store.VerifyPart(uploadID, 4, expires, signature))
		assert.False(t, store.VerifyPart("unknown-upload", 3, expires, signature))
	})
}

func TestLocalDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Put(ctx, "tasks/1/a.txt", []byte("x"), "text/plain", ""))
	require.NoError(t, store.Delete(ctx, "tasks/1/a.txt"))
	require.NoError(t, store.Delete(ctx, "tasks/1/a.txt"))
}

func parseSigned(t *testing.T, rawURL string) (int64, string) {
	t.Helper()

	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)

	expires, err := strconv.ParseInt(parsed.Query().Get("expires"), 10, 64)
	require.NoError(t, err)
	return expires, parsed.Query().Get("signature")
}
