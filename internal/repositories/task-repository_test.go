// Интеграционные тесты репозиториев. Требуют PostgreSQL с применёнными
// миграциями; без TEST_DATABASE_URL пропускаются.
package repositories

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dispatch-system/internal/entities"
	"dispatch-system/pkg/constants"
	apperrors "dispatch-system/pkg/errors"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL не задан, интеграционные тесты пропущены")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	truncate := `
		TRUNCATE notifications, task_history, task_attachments, task_reports,
			broadcast_responses, task_equipment, task_works, tasks,
			equipment, work_types, contact_persons, client_companies, users
		RESTART IDENTITY CASCADE`

	if _, err = pool.Exec(context.Background(), truncate); err != nil {
		// Пустая база: разворачиваем схему из testdata.
		schema, readErr := os.ReadFile(filepath.Join("..", "..", "testdata", "schema.sql"))
		require.NoError(t, readErr)
		_, err = pool.Exec(context.Background(), string(schema))
		require.NoError(t, err)
	}
	return pool
}

func seedInstaller(t *testing.T, pool *pgxpool.Pool, login string) uint64 {
	t.Helper()
	repo := NewUserRepository(pool, zap.NewNop())
	id, err := repo.Create(context.Background(), &entities.User{
		Login:    login,
		Fio:      "Тестовый монтажник",
		Password: "hash",
		Role:     constants.RoleMontajnik,
		IsActive: true,
	})
	require.NoError(t, err)
	return id
}

func seedLogist(t *testing.T, pool *pgxpool.Pool) uint64 {
	t.Helper()
	repo := NewUserRepository(pool, zap.NewNop())
	id, err := repo.Create(context.Background(), &entities.User{
		Login:    "logist-test",
		Fio:      "Тестовый логист",
		Password: "hash",
		Role:     constants.RoleLogist,
		IsActive: true,
	})
	require.NoError(t, err)
	return id
}

func createBroadcastTask(t *testing.T, pool *pgxpool.Pool, creatorID uint64) uint64 {
	t.Helper()
	ctx := context.Background()
	repo := NewTaskRepository(pool, zap.NewNop())

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	taskID, err := repo.CreateInTx(ctx, tx, &entities.Task{
		CreatorID:      creatorID,
		Address:        "г. Тест, ул. Примерная, 1",
		AssignmentType: constants.AssignmentBroadcast,
		IsDraft:        false,
		Status:         constants.StatusNew,
		Version:        1,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	return taskID
}

func TestTaskRepositoryOptimisticLock(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewTaskRepository(pool, zap.NewNop())

	creatorID := seedLogist(t, pool)
	taskID := createBroadcastTask(t, pool, creatorID)

	t.Run("успешное обновление инкрементирует версию", func(t *testing.T) {
		tx, err := pool.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		require.NoError(t, repo.UpdateFieldsInTx(ctx, tx, taskID, 1,
			map[string]interface{}{"address": "новый адрес"}))
		require.NoError(t, tx.Commit(ctx))

		task, err := repo.FindByID(ctx, taskID)
		require.NoError(t, err)
		assert.Equal(t, "новый адрес", task.Address)
		assert.Equal(t, uint64(2), task.Version)
	})

	t.Run("устаревшая версия отклоняется", func(t *testing.T) {
		tx, err := pool.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		err = repo.UpdateFieldsInTx(ctx, tx, taskID, 1,
			map[string]interface{}{"address": "конкурирующий адрес"})
		assert.ErrorIs(t, err, apperrors.ErrVersionMismatch)
	})

	t.Run("несуществующая задача - not found", func(t *testing.T) {
		tx, err := pool.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		err = repo.UpdateFieldsInTx(ctx, tx, 999999, 1,
			map[string]interface{}{"address": "куда-то"})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestTaskRepositoryBroadcastRace(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewTaskRepository(pool, zap.NewNop())

	creatorID := seedLogist(t, pool)
	winnerID := seedInstaller(t, pool, "installer-winner")
	loserID := seedInstaller(t, pool, "installer-loser")
	taskID := createBroadcastTask(t, pool, creatorID)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.AcceptBroadcastInTx(ctx, tx, taskID, winnerID))
	require.NoError(t, tx.Commit(ctx))

	// Второй отклик видит уже назначенную задачу.
	tx2, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx2.Rollback(ctx)
	err = repo.AcceptBroadcastInTx(ctx, tx2, taskID, loserID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyTaken)

	task, err := repo.FindByID(ctx, taskID)
	require.NoError(t, err)
	require.NotNil(t, task.AssignedUserID)
	assert.Equal(t, winnerID, *task.AssignedUserID)
	assert.Equal(t, constants.StatusAccepted, task.Status)
}

func TestTaskRepositoryStatusTransitionGuard(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewTaskRepository(pool, zap.NewNop())

	creatorID := seedLogist(t, pool)
	taskID := createBroadcastTask(t, pool, creatorID)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatusInTx(ctx, tx, taskID,
		constants.StatusNew, constants.StatusAccepted))
	require.NoError(t, tx.Commit(ctx))

	// Конкурирующий переход из уже неактуального статуса отсекается.
	tx2, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx2.Rollback(ctx)
	err = repo.UpdateStatusInTx(ctx, tx2, taskID,
		constants.StatusNew, constants.StatusAccepted)
	assert.ErrorIs(t, err, apperrors.ErrVersionMismatch)

	err = repo.UpdateStatusInTx(ctx, tx2, 999999,
		constants.StatusNew, constants.StatusAccepted)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	task, err := repo.FindByID(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusAccepted, task.Status)
	assert.Equal(t, uint64(2), task.Version)
}

func TestTaskRepositoryDeleteReferencesSetNull(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewTaskRepository(pool, zap.NewNop())

	creatorID := seedLogist(t, pool)
	installerID := seedInstaller(t, pool, "installer-setnull")

	var companyID, contactID uint64
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO client_companies (name) VALUES ('ООО Тестовая компания') RETURNING id`).Scan(&companyID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO contact_persons (company_id, fio, phone) VALUES ($1, 'Контактное лицо', '+992900000000') RETURNING id`,
		companyID).Scan(&contactID))

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)
	taskID, err := repo.CreateInTx(ctx, tx, &entities.Task{
		CreatorID:       creatorID,
		AssignedUserID:  &installerID,
		ContactPersonID: &contactID,
		CompanyID:       &companyID,
		Address:         "г. Тест, ул. Примерная, 2",
		AssignmentType:  constants.AssignmentIndividual,
		IsDraft:         false,
		Status:          constants.StatusNew,
		Version:         1,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	_, err = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, installerID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `DELETE FROM contact_persons WHERE id = $1`, contactID)
	require.NoError(t, err)

	task, err := repo.FindByID(ctx, taskID)
	require.NoError(t, err)
	assert.Nil(t, task.AssignedUserID)
	assert.Nil(t, task.ContactPersonID)
	// Компания остаётся как была, чистит её только вызывающий.
	require.NotNil(t, task.CompanyID)
	assert.Equal(t, companyID, *task.CompanyID)
}

func TestTaskHistoryAppendOnly(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	taskRepo := NewTaskRepository(pool, zap.NewNop())
	historyRepo := NewTaskHistoryRepository(pool)

	creatorID := seedLogist(t, pool)
	taskID := createBroadcastTask(t, pool, creatorID)

	task, err := taskRepo.FindByID(ctx, taskID)
	require.NoError(t, err)

	for _, eventType := range []string{constants.EventCreated, constants.EventPublished} {
		tx, err := pool.Begin(ctx)
		require.NoError(t, err)
		_, err = historyRepo.CreateInTx(ctx, tx, &entities.TaskHistory{
			TaskID:    taskID,
			UserID:    creatorID,
			Action:    task.Status,
			EventType: eventType,
			Snapshot: entities.TaskSnapshot{
				Status:         task.Status,
				Address:        task.Address,
				AssignmentType: task.AssignmentType,
				Version:        task.Version,
			},
		})
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))
	}

	rows, err := historyRepo.FindByTaskID(ctx, taskID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, constants.EventCreated, rows[0].EventType)
	assert.Equal(t, constants.EventPublished, rows[1].EventType)
	assert.Equal(t, task.Address, rows[0].Snapshot.Address)
}
