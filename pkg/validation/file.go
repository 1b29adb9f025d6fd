package validation

import (
	"fmt"
	"io"
	"net/http"
	"slices"

	"dispatch-system/pkg/constants"
	apperrors "dispatch-system/pkg/errors"
)

const maxAttachmentSize = int64(10) << 30 // 10 GiB

// ValidateAttachment проверяет заявленный размер и, для фотографий,
// MIME-тип по содержимому (magic numbers первых 512 байт).
func ValidateAttachment(fileType string, size int64, head io.ReadSeeker) error {
	if size <= 0 {
		return apperrors.ValidationFailed("размер файла должен быть больше нуля", nil)
	}
	if size > maxAttachmentSize {
		return apperrors.ValidationFailed(
			fmt.Sprintf("размер файла превышает лимит в 10 GiB (%d байт)", size), nil)
	}

	switch fileType {
	case constants.FileTypePhoto:
		if head == nil {
			return nil
		}
		mimeType, err := sniffMime(head)
		if err != nil {
			return apperrors.ValidationFailed("не удалось прочитать файл", nil)
		}
		if !slices.Contains(constants.AllowedImageMimeTypes, mimeType) {
			return apperrors.ValidationFailed(
				fmt.Sprintf("недопустимый формат изображения: %s", mimeType), nil)
		}
	case constants.FileTypeDocument, constants.FileTypeVideo:
		// Тип объявлен явно, содержимое не проверяем.
	default:
		return apperrors.ValidationFailed(
			fmt.Sprintf("неизвестный тип файла: %s", fileType), nil)
	}

	return nil
}

func sniffMime(file io.ReadSeeker) (string, error) {
	buffer := make([]byte, 512)
	if _, err := file.Read(buffer); err != nil && err != io.EOF {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buffer), nil
}
