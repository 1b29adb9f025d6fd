package routes

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"dispatch-system/pkg/blobstore"
	apperrors "dispatch-system/pkg/errors"
	"dispatch-system/pkg/utils"
)

// InitBlobRouter поднимает HTTP-поверхность локального блоб-хранилища:
// приём частей по подписанным URL и отдачу файлов. При переходе на S3
// эти маршруты не нужны - подписанные URL ведут прямо в хранилище.
func InitBlobRouter(e *echo.Echo, store *blobstore.LocalBlobStore, logger *zap.Logger) {
	blobs := e.Group("/blobs")

	blobs.PUT("/upload/:uploadId/:partNo", func(c echo.Context) error {
		uploadID := c.Param("uploadId")
		partNo, err := strconv.Atoi(c.Param("partNo"))
		if err != nil || partNo < 1 {
			return utils.ErrorResponse(c, apperrors.ErrBadRequest, logger)
		}
		expires, _ := strconv.ParseInt(c.QueryParam("expires"), 10, 64)
		if !store.VerifyPart(uploadID, partNo, expires, c.QueryParam("signature")) {
			return utils.ErrorResponse(c, apperrors.Forbidden("подпись недействительна или истекла"), logger)
		}

		body := http.MaxBytesReader(c.Response(), c.Request().Body, blobstore.DefaultPartSize)
		data, err := io.ReadAll(body)
		if err != nil {
			return utils.ErrorResponse(c, apperrors.ValidationFailed("часть превышает допустимый размер", err), logger)
		}
		etag, err := store.WritePart(uploadID, partNo, data)
		if err != nil {
			logger.Error("не удалось записать часть загрузки",
				zap.String("upload_id", uploadID), zap.Int("part_no", partNo), zap.Error(err))
			return utils.ErrorResponse(c, err, logger)
		}
		c.Response().Header().Set("ETag", etag)
		return c.NoContent(http.StatusOK)
	})

	blobs.GET("/files/*", func(c echo.Context) error {
		key := c.Param("*")
		expires, _ := strconv.ParseInt(c.QueryParam("expires"), 10, 64)
		if !store.VerifyGet(key, expires, c.QueryParam("signature")) {
			return utils.ErrorResponse(c, apperrors.Forbidden("подпись недействительна или истекла"), logger)
		}

		info, err := store.Head(c.Request().Context(), key)
		if err != nil {
			return utils.ErrorResponse(c, apperrors.NotFound("файл не найден"), logger)
		}
		data, err := store.Get(c.Request().Context(), key)
		if err != nil {
			return utils.ErrorResponse(c, apperrors.NotFound("файл не найден"), logger)
		}
		return c.Blob(http.StatusOK, info.ContentType, data)
	})
}
