package constants

// --- СТАТУСЫ ЗАДАЧ (совпадает с enum task_status в БД) ---
const (
	StatusNew        = "new"
	StatusAccepted   = "accepted"
	StatusOnTheRoad  = "on_the_road"
	StatusOnSite     = "on_site"
	StatusStarted    = "started"
	StatusInspection = "inspection"
	StatusCompleted  = "completed"
	StatusReturned   = "returned"
)

// --- СОБЫТИЯ ПЕРЕХОДОВ ---
const (
	TransitionAccept   = "accept"
	TransitionEnRoute  = "en_route"
	TransitionArrive   = "arrive"
	TransitionBegin    = "begin"
	TransitionSubmit   = "submit_report"
	TransitionResubmit = "resubmit"
)

// transitions - таблица допустимых переходов исполнителя: (откуда, событие) -> куда.
// Переходы approve/reject/complete живут в движке согласования и сюда не входят.
var transitions = map[string]map[string]string{
	StatusNew: {
		TransitionAccept: StatusAccepted,
	},
	StatusAccepted: {
		TransitionEnRoute: StatusOnTheRoad,
		TransitionBegin:   StatusStarted,
	},
	StatusOnTheRoad: {
		TransitionArrive: StatusOnSite,
		TransitionSubmit: StatusInspection,
	},
	StatusOnSite: {
		TransitionBegin:  StatusStarted,
		TransitionSubmit: StatusInspection,
	},
	StatusStarted: {
		TransitionSubmit: StatusInspection,
	},
	StatusReturned: {
		TransitionResubmit: StatusInspection,
	},
}

// NextStatus возвращает целевой статус для события из текущего статуса.
// ok=false - переход недопустим.
func NextStatus(from, event string) (string, bool) {
	events, ok := transitions[from]
	if !ok {
		return "", false
	}
	to, ok := events[event]
	return to, ok
}

// Финальный статус ровно один, из него переходов нет.
func IsFinalStatus(code string) bool {
	return code == StatusCompleted
}

func IsKnownStatus(code string) bool {
	switch code {
	case StatusNew, StatusAccepted, StatusOnTheRoad, StatusOnSite,
		StatusStarted, StatusInspection, StatusCompleted, StatusReturned:
		return true
	}
	return false
}
