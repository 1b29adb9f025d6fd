// Файл: internal/authz/authz.go
// Пакет authz отвечает на вопрос "может ли этот пользователь выполнить
// это действие над этой задачей". Допустимость самого перехода по графу
// статусов проверяется отдельно, в pkg/constants.
package authz

import (
	"dispatch-system/internal/entities"
	"dispatch-system/pkg/constants"
)

// Actor - минимальный срез пользователя для проверок доступа.
type Actor struct {
	ID   uint64
	Role string
}

func (a Actor) IsAdmin() bool     { return a.Role == constants.RoleAdmin }
func (a Actor) IsLogist() bool    { return a.Role == constants.RoleLogist }
func (a Actor) IsInstaller() bool { return a.Role == constants.RoleMontajnik }
func (a Actor) IsTechSupp() bool  { return a.Role == constants.RoleTechSupp }

func isAssigned(a Actor, t *entities.Task) bool {
	return t.AssignedUserID != nil && *t.AssignedUserID == a.ID
}

// CanReadDraft: черновик видят только автор-логист и админ.
func CanReadDraft(a Actor, t *entities.Task) bool {
	if a.IsAdmin() {
		return true
	}
	return a.IsLogist() && t.CreatorID == a.ID
}

// CanManageDraft совпадает с CanReadDraft: кто видит, тот и правит.
func CanManageDraft(a Actor, t *entities.Task) bool {
	return CanReadDraft(a, t)
}

// CanCreateDraft: черновики заводят логисты и админы.
func CanCreateDraft(a Actor) bool {
	return a.IsAdmin() || a.IsLogist()
}

// CanReadTask - видимость опубликованной задачи.
// Монтажник видит свои задачи и открытые broadcast.
func CanReadTask(a Actor, t *entities.Task) bool {
	if t.IsDraft {
		return CanReadDraft(a, t)
	}
	switch {
	case a.IsAdmin(), a.IsLogist(), a.IsTechSupp():
		return true
	case a.IsInstaller():
		if isAssigned(a, t) {
			return true
		}
		return t.AssignmentType == constants.AssignmentBroadcast &&
			t.AssignedUserID == nil && t.Status == constants.StatusNew
	}
	return false
}

// CanEditTask - редактирование полей опубликованной задачи.
// Логист правит свои задачи, админ - любые; completed не правится никем.
func CanEditTask(a Actor, t *entities.Task) bool {
	if t.IsDraft || t.Status == constants.StatusCompleted {
		return false
	}
	if a.IsAdmin() {
		return true
	}
	return a.IsLogist() && t.CreatorID == a.ID
}

// CanTransition - проверка актёра для перехода исполнителя.
// accept на broadcast-задаче доступен любому монтажнику, остальные
// переходы - только назначенному.
func CanTransition(a Actor, t *entities.Task, transition string) bool {
	if t.IsDraft {
		return false
	}
	if a.IsAdmin() {
		return true
	}
	if !a.IsInstaller() {
		return false
	}
	if transition == constants.TransitionAccept {
		if t.AssignmentType == constants.AssignmentBroadcast {
			return t.AssignedUserID == nil
		}
		return isAssigned(a, t)
	}
	return isAssigned(a, t)
}

// CanSubmitReport - отчёт создаёт и отправляет назначенный монтажник.
func CanSubmitReport(a Actor, t *entities.Task) bool {
	if a.IsAdmin() {
		return true
	}
	return a.IsInstaller() && isAssigned(a, t)
}

// CanReview сообщает, может ли актёр согласовывать отчёты.
// tech_supp участвует только когда задача требует техпроверки.
func CanReview(a Actor, requiresTechReview bool) bool {
	switch {
	case a.IsAdmin(), a.IsLogist():
		return true
	case a.IsTechSupp():
		return requiresTechReview
	}
	return false
}

// CanReject: техподдержке отклонение недоступно, только согласование.
func CanReject(a Actor) bool {
	return a.IsAdmin() || a.IsLogist()
}

// CanManageAttachment - снять вложение может загрузивший его,
// автор задачи-логист и админ.
func CanManageAttachment(a Actor, t *entities.Task, uploaderID uint64) bool {
	if a.IsAdmin() {
		return true
	}
	if a.IsLogist() && t.CreatorID == a.ID {
		return true
	}
	return uploaderID == a.ID
}

// CanManageReferences - справочники ведут логисты и админы.
func CanManageReferences(a Actor) bool {
	return a.IsAdmin() || a.IsLogist()
}

// CanManageUsers - учётки и роли меняет только админ.
func CanManageUsers(a Actor) bool {
	return a.IsAdmin()
}
