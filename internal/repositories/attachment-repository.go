package repositories

import (
	"context"
	"errors"

	"dispatch-system/internal/entities"
	apperrors "dispatch-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AttachmentRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, a *entities.TaskAttachment) (uint64, error)
	FindByID(ctx context.Context, id uint64) (*entities.TaskAttachment, error)
	FindByTaskID(ctx context.Context, taskID uint64) ([]entities.TaskAttachment, error)
	LinkToReportInTx(ctx context.Context, tx pgx.Tx, taskID uint64, storageKeys []string, reportID uint64) error
	SoftDeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error
	MarkProcessed(ctx context.Context, id uint64, checksum string, thumbnailKey *string) error
	MarkFailed(ctx context.Context, id uint64, errorText string) error
	FindUnprocessed(ctx context.Context, limit int) ([]entities.TaskAttachment, error)
}

type attachmentRepository struct {
	storage *pgxpool.Pool
}

func NewAttachmentRepository(storage *pgxpool.Pool) AttachmentRepositoryInterface {
	return &attachmentRepository{storage: storage}
}

const attachmentColumns = `id, task_id, report_id, storage_key, thumbnail_key,
	file_name, file_type, mime, file_size, uploader_id, uploader_role,
	processed, error_text, checksum, created_at, deleted_at`

func (r *attachmentRepository) CreateInTx(ctx context.Context, tx pgx.Tx, a *entities.TaskAttachment) (uint64, error) {
	query := `
		INSERT INTO task_attachments (task_id, report_id, storage_key, thumbnail_key,
			file_name, file_type, mime, file_size, uploader_id, uploader_role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	var id uint64
	err := tx.QueryRow(ctx, query,
		a.TaskID, a.ReportID, a.StorageKey, a.ThumbnailKey,
		a.FileName, a.FileType, a.Mime, a.FileSize, a.UploaderID, a.UploaderRole,
	).Scan(&id)
	return id, err
}

func scanAttachment(row pgx.Row) (*entities.TaskAttachment, error) {
	var a entities.TaskAttachment
	err := row.Scan(&a.ID, &a.TaskID, &a.ReportID, &a.StorageKey, &a.ThumbnailKey,
		&a.FileName, &a.FileType, &a.Mime, &a.FileSize, &a.UploaderID, &a.UploaderRole,
		&a.Processed, &a.ErrorText, &a.Checksum, &a.CreatedAt, &a.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *attachmentRepository) FindByID(ctx context.Context, id uint64) (*entities.TaskAttachment, error) {
	return scanAttachment(r.storage.QueryRow(ctx,
		`SELECT `+attachmentColumns+` FROM task_attachments WHERE id = $1 AND deleted_at IS NULL`, id))
}

func (r *attachmentRepository) FindByTaskID(ctx context.Context, taskID uint64) ([]entities.TaskAttachment, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT `+attachmentColumns+` FROM task_attachments
		 WHERE task_id = $1 AND deleted_at IS NULL ORDER BY created_at`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttachments(rows)
}

// LinkToReportInTx проставляет вложениям задачи обратную ссылку на отчёт
// по ключам хранилища. Чужие и удалённые вложения предикат не затрагивает.
func (r *attachmentRepository) LinkToReportInTx(ctx context.Context, tx pgx.Tx, taskID uint64, storageKeys []string, reportID uint64) error {
	_, err := tx.Exec(ctx,
		`UPDATE task_attachments SET report_id = $3
		 WHERE task_id = $1 AND storage_key = ANY($2) AND deleted_at IS NULL`,
		taskID, storageKeys, reportID)
	return err
}

// SoftDeleteInTx помечает вложение удалённым; файл в хранилище убирает
// фоновый воркер уже после коммита.
func (r *attachmentRepository) SoftDeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	tag, err := tx.Exec(ctx,
		`UPDATE task_attachments SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *attachmentRepository) MarkProcessed(ctx context.Context, id uint64, checksum string, thumbnailKey *string) error {
	_, err := r.storage.Exec(ctx,
		`UPDATE task_attachments SET processed = true, checksum = $2, thumbnail_key = COALESCE($3, thumbnail_key), error_text = NULL WHERE id = $1`,
		id, checksum, thumbnailKey)
	return err
}

func (r *attachmentRepository) MarkFailed(ctx context.Context, id uint64, errorText string) error {
	_, err := r.storage.Exec(ctx,
		`UPDATE task_attachments SET processed = true, error_text = $2 WHERE id = $1`,
		id, errorText)
	return err
}

func (r *attachmentRepository) FindUnprocessed(ctx context.Context, limit int) ([]entities.TaskAttachment, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT `+attachmentColumns+` FROM task_attachments
		 WHERE NOT processed AND deleted_at IS NULL ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttachments(rows)
}

func scanAttachments(rows pgx.Rows) ([]entities.TaskAttachment, error) {
	var result []entities.TaskAttachment
	for rows.Next() {
		var a entities.TaskAttachment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.ReportID, &a.StorageKey, &a.ThumbnailKey,
			&a.FileName, &a.FileType, &a.Mime, &a.FileSize, &a.UploaderID, &a.UploaderRole,
			&a.Processed, &a.ErrorText, &a.Checksum, &a.CreatedAt, &a.DeletedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
