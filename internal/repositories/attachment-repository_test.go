package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch-system/internal/entities"
	"dispatch-system/pkg/constants"
)

func TestAttachmentRepositoryLinkToReport(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	attachmentRepo := NewAttachmentRepository(pool)
	reportRepo := NewReportRepository(pool)

	creatorID := seedLogist(t, pool)
	installerID := seedInstaller(t, pool, "installer-report")
	taskID := createBroadcastTask(t, pool, creatorID)

	newAttachment := func(storageKey string) *entities.TaskAttachment {
		return &entities.TaskAttachment{
			TaskID:       taskID,
			StorageKey:   storageKey,
			FileName:     "фото.jpg",
			FileType:     constants.FileTypePhoto,
			Mime:         "image/jpeg",
			FileSize:     4,
			UploaderID:   installerID,
			UploaderRole: constants.RoleMontajnik,
		}
	}

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	linkedKey := "reports/1/1/aaaa.jpg"
	otherKey := "tasks/1/2026/08/28/bbbb.jpg"
	linkedID, err := attachmentRepo.CreateInTx(ctx, tx, newAttachment(linkedKey))
	require.NoError(t, err)
	otherID, err := attachmentRepo.CreateInTx(ctx, tx, newAttachment(otherKey))
	require.NoError(t, err)

	report := &entities.TaskReport{
		TaskID:         taskID,
		InstallerID:    installerID,
		Text:           "работы выполнены",
		StorageKeys:    []string{linkedKey},
		LogistApproval: constants.ApprovalWaiting,
		TechApproval:   constants.ApprovalWaiting,
	}
	reportID, err := reportRepo.CreateInTx(ctx, tx, report)
	require.NoError(t, err)

	require.NoError(t, attachmentRepo.LinkToReportInTx(ctx, tx, taskID, []string{linkedKey}, reportID))
	require.NoError(t, tx.Commit(ctx))

	linked, err := attachmentRepo.FindByID(ctx, linkedID)
	require.NoError(t, err)
	require.NotNil(t, linked.ReportID)
	assert.Equal(t, reportID, *linked.ReportID)

	// Вложение с другим ключом обратной ссылки не получает.
	other, err := attachmentRepo.FindByID(ctx, otherID)
	require.NoError(t, err)
	assert.Nil(t, other.ReportID)
}
