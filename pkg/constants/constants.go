package constants

// --- РОЛИ (совпадает с enum user_role в БД) ---
const (
	RoleAdmin     = "admin"
	RoleLogist    = "logist"
	RoleMontajnik = "montajnik"
	RoleTechSupp  = "tech_supp"
)

func IsKnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleLogist, RoleMontajnik, RoleTechSupp:
		return true
	}
	return false
}

// --- РЕЖИМ НАЗНАЧЕНИЯ ---
const (
	AssignmentIndividual = "individual"
	AssignmentBroadcast  = "broadcast"
)

// --- ТИПЫ ФАЙЛОВ ВЛОЖЕНИЙ ---
const (
	FileTypePhoto    = "photo"
	FileTypeDocument = "document"
	FileTypeVideo    = "video"
)

// MIME-типы, допустимые для file_type=photo. Остальные типы файлов
// требуют явного file_type от клиента.
var AllowedImageMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
}

// --- СТАТУСЫ СОГЛАСОВАНИЯ ОТЧЁТА ---
const (
	ApprovalWaiting  = "waiting"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// --- ТИПЫ СОБЫТИЙ ИСТОРИИ (enum history_event_type в БД) ---
const (
	EventCreated             = "created"
	EventPublished           = "published"
	EventUpdated             = "updated"
	EventStatusChanged       = "status_changed"
	EventFieldChanged        = "field_changed"
	EventAssigned            = "assigned"
	EventUnassigned          = "unassigned"
	EventReportSubmitted     = "report_submitted"
	EventReportStatusChanged = "report_status_changed"
	EventAttachmentAdded     = "attachment_added"
	EventAttachmentRemoved   = "attachment_removed"
)
