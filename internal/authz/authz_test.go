package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dispatch-system/internal/entities"
	"dispatch-system/pkg/constants"
)

func task(mutate ...func(*entities.Task)) *entities.Task {
	t := &entities.Task{
		ID:             1,
		CreatorID:      10,
		AssignmentType: constants.AssignmentIndividual,
		Status:         constants.StatusNew,
	}
	for _, m := range mutate {
		m(t)
	}
	return t
}

func assigned(userID uint64) func(*entities.Task) {
	return func(t *entities.Task) { t.AssignedUserID = &userID }
}

var (
	admin      = Actor{ID: 1, Role: constants.RoleAdmin}
	creator    = Actor{ID: 10, Role: constants.RoleLogist}
	otherLog   = Actor{ID: 11, Role: constants.RoleLogist}
	installer  = Actor{ID: 20, Role: constants.RoleMontajnik}
	installer2 = Actor{ID: 21, Role: constants.RoleMontajnik}
	techSupp   = Actor{ID: 30, Role: constants.RoleTechSupp}
)

func TestCanReadDraft(t *testing.T) {
	draft := task(func(t *entities.Task) { t.IsDraft = true })

	assert.True(t, CanReadDraft(admin, draft))
	assert.True(t, CanReadDraft(creator, draft))
	// Чужой черновик неотличим от несуществующего.
	assert.False(t, CanReadDraft(otherLog, draft))
	assert.False(t, CanReadDraft(installer, draft))
	assert.False(t, CanReadDraft(techSupp, draft))
}

func TestCanReadTask(t *testing.T) {
	t.Run("офисные роли видят всё опубликованное", func(t *testing.T) {
		published := task()
		assert.True(t, CanReadTask(admin, published))
		assert.True(t, CanReadTask(otherLog, published))
		assert.True(t, CanReadTask(techSupp, published))
	})

	t.Run("монтажник видит назначенные на себя", func(t *testing.T) {
		mine := task(assigned(installer.ID))
		assert.True(t, CanReadTask(installer, mine))
		assert.False(t, CanReadTask(installer2, mine))
	})

	t.Run("монтажник видит открытые broadcast", func(t *testing.T) {
		open := task(func(t *entities.Task) { t.AssignmentType = constants.AssignmentBroadcast })
		assert.True(t, CanReadTask(installer, open))
		assert.True(t, CanReadTask(installer2, open))
	})

	t.Run("взятый broadcast пропадает у остальных", func(t *testing.T) {
		taken := task(
			func(t *entities.Task) { t.AssignmentType = constants.AssignmentBroadcast },
			assigned(installer.ID),
			func(t *entities.Task) { t.Status = constants.StatusAccepted },
		)
		assert.True(t, CanReadTask(installer, taken))
		assert.False(t, CanReadTask(installer2, taken))
	})

	t.Run("неназначенная individual монтажнику не видна", func(t *testing.T) {
		assert.False(t, CanReadTask(installer, task()))
	})
}

func TestCanEditTask(t *testing.T) {
	published := task(func(t *entities.Task) { t.Status = constants.StatusAccepted })

	assert.True(t, CanEditTask(admin, published))
	assert.True(t, CanEditTask(creator, published))
	assert.False(t, CanEditTask(otherLog, published))
	assert.False(t, CanEditTask(installer, published))
	assert.False(t, CanEditTask(techSupp, published))

	completed := task(func(t *entities.Task) { t.Status = constants.StatusCompleted })
	assert.False(t, CanEditTask(admin, completed), "завершённая задача не правится никем")

	draft := task(func(t *entities.Task) { t.IsDraft = true })
	assert.False(t, CanEditTask(creator, draft), "черновик правится отдельными операциями")
}

func TestCanTransition(t *testing.T) {
	t.Run("accept открытого broadcast доступен любому монтажнику", func(t *testing.T) {
		open := task(func(t *entities.Task) { t.AssignmentType = constants.AssignmentBroadcast })
		assert.True(t, CanTransition(installer, open, constants.TransitionAccept))
		assert.True(t, CanTransition(installer2, open, constants.TransitionAccept))
	})

	t.Run("accept individual только назначенному", func(t *testing.T) {
		mine := task(assigned(installer.ID))
		assert.True(t, CanTransition(installer, mine, constants.TransitionAccept))
		assert.False(t, CanTransition(installer2, mine, constants.TransitionAccept))
	})

	t.Run("исполнительские переходы только назначенному", func(t *testing.T) {
		mine := task(assigned(installer.ID), func(t *entities.Task) { t.Status = constants.StatusAccepted })
		assert.True(t, CanTransition(installer, mine, constants.TransitionEnRoute))
		assert.False(t, CanTransition(installer2, mine, constants.TransitionEnRoute))
		assert.False(t, CanTransition(creator, mine, constants.TransitionEnRoute))
		assert.False(t, CanTransition(techSupp, mine, constants.TransitionEnRoute))
	})

	t.Run("админ может всё, черновик - никто", func(t *testing.T) {
		mine := task(assigned(installer.ID))
		assert.True(t, CanTransition(admin, mine, constants.TransitionEnRoute))

		draft := task(func(t *entities.Task) { t.IsDraft = true })
		assert.False(t, CanTransition(admin, draft, constants.TransitionAccept))
	})
}

func TestCanReview(t *testing.T) {
	assert.True(t, CanReview(admin, false))
	assert.True(t, CanReview(creator, false))
	assert.False(t, CanReview(installer, true))

	// Техподдержка участвует только при требуемой техпроверке.
	assert.True(t, CanReview(techSupp, true))
	assert.False(t, CanReview(techSupp, false))
}

func TestCanReject(t *testing.T) {
	assert.True(t, CanReject(admin))
	assert.True(t, CanReject(creator))
	assert.False(t, CanReject(techSupp))
	assert.False(t, CanReject(installer))
}

func TestCanManageAttachment(t *testing.T) {
	published := task()

	assert.True(t, CanManageAttachment(admin, published, 99))
	assert.True(t, CanManageAttachment(creator, published, 99))
	assert.False(t, CanManageAttachment(otherLog, published, 99))

	// Загрузивший снимает своё вложение.
	assert.True(t, CanManageAttachment(installer, published, installer.ID))
	assert.False(t, CanManageAttachment(installer, published, installer2.ID))
}
