// Тесты жизненного цикла на фейковых репозиториях: проверяется состав
// журнала и защита перехода статуса от параллельного запроса.
package services

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dispatch-system/internal/authz"
	"dispatch-system/internal/dto"
	"dispatch-system/internal/entities"
	"dispatch-system/internal/repositories"
	"dispatch-system/pkg/constants"
	"dispatch-system/pkg/eventbus"
	apperrors "dispatch-system/pkg/errors"
)

// fakeTaskRepo держит одну задачу в памяти и повторяет контракт
// UpdateStatusInTx: переход проходит только из ожидаемого статуса.
// Через stale можно подсунуть устаревший срез в FindByID.
type fakeTaskRepo struct {
	task  *entities.Task
	stale *entities.Task
}

func copyTask(t *entities.Task) *entities.Task {
	c := *t
	return &c
}

func (f *fakeTaskRepo) CreateInTx(ctx context.Context, tx pgx.Tx, task *entities.Task) (uint64, error) {
	return task.ID, nil
}

func (f *fakeTaskRepo) FindByID(ctx context.Context, id uint64) (*entities.Task, error) {
	if f.stale != nil {
		return copyTask(f.stale), nil
	}
	return copyTask(f.task), nil
}

func (f *fakeTaskRepo) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Task, error) {
	return copyTask(f.task), nil
}

func (f *fakeTaskRepo) UpdateFieldsInTx(ctx context.Context, tx pgx.Tx, id uint64, expectedVersion uint64, fields map[string]interface{}) error {
	if expectedVersion != f.task.Version {
		return apperrors.ErrVersionMismatch
	}
	if v, ok := fields["is_draft"]; ok {
		f.task.IsDraft = v.(bool)
	}
	if v, ok := fields["client_price"]; ok {
		f.task.ClientPrice = v.(float64)
	}
	if v, ok := fields["installer_reward"]; ok {
		f.task.InstallerReward = v.(float64)
	}
	f.task.Version++
	return nil
}

func (f *fakeTaskRepo) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, fromStatus, toStatus string) error {
	if f.task.Status != fromStatus {
		return apperrors.ErrVersionMismatch
	}
	f.task.Status = toStatus
	f.task.Version++
	return nil
}

func (f *fakeTaskRepo) AcceptBroadcastInTx(ctx context.Context, tx pgx.Tx, taskID, userID uint64) error {
	if f.task.AssignedUserID != nil {
		return apperrors.ErrAlreadyTaken
	}
	uid := userID
	f.task.AssignedUserID = &uid
	f.task.Status = constants.StatusAccepted
	f.task.Version++
	return nil
}

func (f *fakeTaskRepo) ReplaceWorksInTx(ctx context.Context, tx pgx.Tx, taskID uint64, items []dto.TaskWorkItemDTO) error {
	return nil
}

func (f *fakeTaskRepo) ReplaceEquipmentInTx(ctx context.Context, tx pgx.Tx, taskID uint64, items []dto.TaskEquipmentItemDTO) error {
	return nil
}

func (f *fakeTaskRepo) GetWorks(ctx context.Context, q repositories.Querier, taskID uint64) ([]repositories.WorkRow, error) {
	return nil, nil
}

func (f *fakeTaskRepo) GetEquipment(ctx context.Context, q repositories.Querier, taskID uint64) ([]repositories.EquipmentRow, error) {
	return nil, nil
}

func (f *fakeTaskRepo) List(ctx context.Context, scope repositories.ListScope, filter dto.TaskListFilterDTO) ([]entities.Task, uint64, error) {
	return nil, 0, nil
}

func (f *fakeTaskRepo) DeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error { return nil }

func (f *fakeTaskRepo) Pool() *pgxpool.Pool { return nil }

type fakeHistorySvc struct {
	rows []HistoryRow
}

func (f *fakeHistorySvc) RecordInTx(ctx context.Context, tx pgx.Tx, task *entities.Task, row HistoryRow) error {
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeHistorySvc) GetTimeline(ctx context.Context, actor authz.Actor, taskID uint64) ([]dto.TimelineEventDTO, error) {
	return nil, nil
}

type queuedNote struct {
	UserID uint64
	Text   string
}

type fakeNotificationSvc struct {
	notes []queuedNote
}

func (f *fakeNotificationSvc) QueueInTx(ctx context.Context, tx pgx.Tx, userID uint64, taskID *uint64, text string) (uint64, error) {
	f.notes = append(f.notes, queuedNote{UserID: userID, Text: text})
	return uint64(len(f.notes)), nil
}

func (f *fakeNotificationSvc) Send(ctx context.Context, n entities.Notification) error { return nil }

func (f *fakeNotificationSvc) SendPending(ctx context.Context, batchSize int) error { return nil }

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

func newFakeTaskService(repo *fakeTaskRepo) (TaskServiceInterface, *fakeHistorySvc, *fakeNotificationSvc) {
	history := &fakeHistorySvc{}
	notifier := &fakeNotificationSvc{}
	svc := NewTaskService(repo, nil, nil, nil, nil,
		history, notifier, fakeTxManager{}, eventbus.New(zap.NewNop()), zap.NewNop())
	return svc, history, notifier
}

func individualTask(assignee uint64, status string) *entities.Task {
	return &entities.Task{
		ID:             7,
		CreatorID:      1,
		AssignedUserID: &assignee,
		Address:        "г. Тест, ул. Примерная, 1",
		AssignmentType: constants.AssignmentIndividual,
		IsDraft:        false,
		Status:         status,
		Version:        1,
	}
}

func TestTransitionIndividualAcceptWritesAssignedRow(t *testing.T) {
	repo := &fakeTaskRepo{task: individualTask(42, constants.StatusNew)}
	svc, history, notifier := newFakeTaskService(repo)

	result, err := svc.Transition(context.Background(),
		authz.Actor{ID: 42, Role: constants.RoleMontajnik}, 7, constants.TransitionAccept)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusAccepted, result.Status)

	require.Len(t, history.rows, 2)
	assert.Equal(t, constants.EventAssigned, history.rows[0].EventType)
	require.NotNil(t, history.rows[0].NewValue)
	assert.Equal(t, "42", *history.rows[0].NewValue)
	assert.Equal(t, constants.EventStatusChanged, history.rows[1].EventType)
	assert.Equal(t, constants.StatusNew, *history.rows[1].OldValue)
	assert.Equal(t, constants.StatusAccepted, *history.rows[1].NewValue)

	require.Len(t, notifier.notes, 1)
	assert.Equal(t, uint64(1), notifier.notes[0].UserID)
}

func TestTransitionStaleStatusGetsConflict(t *testing.T) {
	repo := &fakeTaskRepo{task: individualTask(42, constants.StatusAccepted)}
	svc, history, _ := newFakeTaskService(repo)
	actor := authz.Actor{ID: 42, Role: constants.RoleMontajnik}

	// Срез до первого перехода: его увидит второй, опоздавший запрос.
	staleSnapshot := copyTask(repo.task)

	_, err := svc.Transition(context.Background(), actor, 7, constants.TransitionBegin)
	require.NoError(t, err)
	require.Equal(t, constants.StatusStarted, repo.task.Status)
	require.Len(t, history.rows, 1)

	// Второй запрос валидируется по устаревшему accepted, но UPDATE
	// с предикатом по статусу его отсекает.
	repo.stale = staleSnapshot
	_, err = svc.Transition(context.Background(), actor, 7, constants.TransitionEnRoute)
	assert.ErrorIs(t, err, apperrors.ErrVersionMismatch)

	assert.Equal(t, constants.StatusStarted, repo.task.Status)
	assert.Len(t, history.rows, 1)
}

func TestPublishNotifiesAssignee(t *testing.T) {
	t.Run("с назначенным исполнителем уведомление уходит ему", func(t *testing.T) {
		task := individualTask(42, constants.StatusNew)
		task.IsDraft = true
		task.CreatorID = 5
		repo := &fakeTaskRepo{task: task}
		history := &fakeHistorySvc{}
		notifier := &fakeNotificationSvc{}
		svc := NewDraftService(repo, nil, nil, nil, nil, nil,
			history, notifier, fakeTxManager{}, eventbus.New(zap.NewNop()), zap.NewNop())

		result, err := svc.Publish(context.Background(),
			authz.Actor{ID: 5, Role: constants.RoleLogist}, 7)
		require.NoError(t, err)
		assert.False(t, result.IsDraft)

		require.Len(t, history.rows, 1)
		assert.Equal(t, constants.EventPublished, history.rows[0].EventType)
		require.Len(t, notifier.notes, 1)
		assert.Equal(t, uint64(42), notifier.notes[0].UserID)
	})

	t.Run("без исполнителя публикация никого не уведомляет", func(t *testing.T) {
		task := individualTask(42, constants.StatusNew)
		task.IsDraft = true
		task.CreatorID = 5
		task.AssignedUserID = nil
		repo := &fakeTaskRepo{task: task}
		history := &fakeHistorySvc{}
		notifier := &fakeNotificationSvc{}
		svc := NewDraftService(repo, nil, nil, nil, nil, nil,
			history, notifier, fakeTxManager{}, eventbus.New(zap.NewNop()), zap.NewNop())

		_, err := svc.Publish(context.Background(),
			authz.Actor{ID: 5, Role: constants.RoleLogist}, 7)
		require.NoError(t, err)
		assert.Empty(t, notifier.notes)
	})
}
