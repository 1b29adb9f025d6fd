// Файл: internal/services/review_service.go
// Движок согласования отчётов: два независимых проверяющих (логист и
// техподдержка), терминальное завершение и цикл возврата на доработку.
package services

import (
	"context"
	"fmt"

	"dispatch-system/internal/authz"
	"dispatch-system/internal/dto"
	"dispatch-system/internal/entities"
	"dispatch-system/internal/repositories"
	"dispatch-system/pkg/constants"
	"dispatch-system/pkg/eventbus"
	apperrors "dispatch-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReviewServiceInterface interface {
	SubmitReport(ctx context.Context, actor authz.Actor, taskID uint64, payload dto.SaveReportDTO) (*dto.ReportDTO, error)
	Review(ctx context.Context, actor authz.Actor, taskID uint64, payload dto.ReviewReportDTO) (*dto.ReportDTO, error)
	GetReports(ctx context.Context, actor authz.Actor, taskID uint64) ([]dto.ReportDTO, error)
}

type reviewService struct {
	taskRepo        repositories.TaskRepositoryInterface
	reportRepo      repositories.ReportRepositoryInterface
	attachmentRepo  repositories.AttachmentRepositoryInterface
	workTypeRepo    repositories.WorkTypeRepositoryInterface
	userRepo        repositories.UserRepositoryInterface
	historySvc      HistoryServiceInterface
	notificationSvc NotificationServiceInterface
	txManager       repositories.TxManagerInterface
	bus             *eventbus.Bus
	logger          *zap.Logger
}

func NewReviewService(
	taskRepo repositories.TaskRepositoryInterface,
	reportRepo repositories.ReportRepositoryInterface,
	attachmentRepo repositories.AttachmentRepositoryInterface,
	workTypeRepo repositories.WorkTypeRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	historySvc HistoryServiceInterface,
	notificationSvc NotificationServiceInterface,
	txManager repositories.TxManagerInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) ReviewServiceInterface {
	return &reviewService{
		taskRepo:        taskRepo,
		reportRepo:      reportRepo,
		attachmentRepo:  attachmentRepo,
		workTypeRepo:    workTypeRepo,
		userRepo:        userRepo,
		historySvc:      historySvc,
		notificationSvc: notificationSvc,
		txManager:       txManager,
		bus:             bus,
		logger:          logger,
	}
}

// requiresTechReview выводится по требованию из выбранных видов работ.
func (s *reviewService) requiresTechReview(ctx context.Context, taskID uint64) (bool, error) {
	works, err := s.taskRepo.GetWorks(ctx, s.taskRepo.Pool(), taskID)
	if err != nil {
		return false, err
	}
	if len(works) == 0 {
		return false, nil
	}
	ids := make([]uint64, 0, len(works))
	for _, w := range works {
		ids = append(ids, w.WorkTypeID)
	}
	workTypes, err := s.workTypeRepo.FindByIDs(ctx, ids)
	if err != nil {
		return false, err
	}
	for _, wt := range workTypes {
		if wt.RequiresTechReview {
			return true, nil
		}
	}
	return false, nil
}

// isFinalizedApproved: логист согласовал, и техподдержка согласовала,
// если техпроверка вообще требуется.
func isFinalizedApproved(report *entities.TaskReport, requiresTech bool) bool {
	if report.LogistApproval != constants.ApprovalApproved {
		return false
	}
	return !requiresTech || report.TechApproval == constants.ApprovalApproved
}

func approvalPair(report *entities.TaskReport) string {
	return fmt.Sprintf("logist=%s, tech=%s", report.LogistApproval, report.TechApproval)
}

// resetRejectedSides готовит согласования к повторной отправке: в waiting
// возвращается только отклонившая сторона, прежнее approved второй
// стороны сохраняется.
func resetRejectedSides(logist, tech string) (string, string) {
	if logist == constants.ApprovalRejected {
		logist = constants.ApprovalWaiting
	}
	if tech == constants.ApprovalRejected {
		tech = constants.ApprovalWaiting
	}
	return logist, tech
}

// SubmitReport отправляет отчёт на проверку. Из returned это повторная
// отправка: сбрасывается только отклонившая сторона, согласие другой
// стороны сохраняется.
func (s *reviewService) SubmitReport(ctx context.Context, actor authz.Actor, taskID uint64, payload dto.SaveReportDTO) (*dto.ReportDTO, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsDraft {
		return nil, apperrors.PreconditionFailed("по черновику отчёт не отправляется")
	}
	if !authz.CanSubmitReport(actor, task) {
		return nil, apperrors.Forbidden("отчёт отправляет назначенный монтажник")
	}

	transition := constants.TransitionSubmit
	if task.Status == constants.StatusReturned {
		transition = constants.TransitionResubmit
	}
	if _, ok := constants.NextStatus(task.Status, transition); !ok {
		return nil, apperrors.PreconditionFailed(
			fmt.Sprintf("отчёт нельзя отправить из статуса %s", task.Status))
	}

	requiresTech, err := s.requiresTechReview(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	var report *entities.TaskReport
	oldStatus := task.Status
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if transition == constants.TransitionResubmit {
			// Повторная отправка: правим существующий отчёт.
			report, err = s.reportRepo.FindLatestByTaskIDInTx(ctx, tx, task.ID)
			if err != nil {
				return err
			}
			logist, tech := resetRejectedSides(report.LogistApproval, report.TechApproval)
			if payload.Text != "" {
				if _, err := tx.Exec(ctx,
					`UPDATE task_reports SET text = $2, storage_keys = $3, updated_at = now() WHERE id = $1`,
					report.ID, payload.Text, payload.StorageKeys); err != nil {
					return err
				}
				report.Text = payload.Text
				report.StorageKeys = payload.StorageKeys
			}
			if err := s.reportRepo.UpdateApprovalsInTx(ctx, tx, report.ID, logist, tech, nil); err != nil {
				return err
			}
			report.LogistApproval, report.TechApproval = logist, tech
		} else {
			report = &entities.TaskReport{
				TaskID:         task.ID,
				InstallerID:    actor.ID,
				Text:           payload.Text,
				StorageKeys:    payload.StorageKeys,
				LogistApproval: constants.ApprovalWaiting,
				TechApproval:   constants.ApprovalWaiting,
			}
			if _, err := s.reportRepo.CreateInTx(ctx, tx, report); err != nil {
				return err
			}
		}

		// Вложения отчёта получают обратную ссылку по ключам из payload.
		if len(payload.StorageKeys) > 0 {
			if err := s.attachmentRepo.LinkToReportInTx(ctx, tx, task.ID, payload.StorageKeys, report.ID); err != nil {
				return err
			}
		}

		if err := s.taskRepo.UpdateStatusInTx(ctx, tx, task.ID, oldStatus, constants.StatusInspection); err != nil {
			return err
		}
		fresh, err := s.taskRepo.FindForUpdateInTx(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		*task = *fresh

		relatedType := "report"
		newStatus := constants.StatusInspection
		if err := s.historySvc.RecordInTx(ctx, tx, task, HistoryRow{
			UserID:      actor.ID,
			EventType:   constants.EventReportSubmitted,
			RelatedID:   &report.ID,
			RelatedType: &relatedType,
		}); err != nil {
			return err
		}
		if err := s.historySvc.RecordInTx(ctx, tx, task, HistoryRow{
			UserID:    actor.ID,
			EventType: constants.EventStatusChanged,
			OldValue:  &oldStatus,
			NewValue:  &newStatus,
		}); err != nil {
			return err
		}

		return s.queueReviewerNotifications(ctx, tx, task, report, requiresTech, transition)
	})
	if err != nil {
		return nil, err
	}

	publishHistoryRecorded(ctx, s.bus, task, actor.ID, constants.EventReportSubmitted)
	return reportToDTO(report), nil
}

// queueReviewerNotifications: при первой отправке зовём обе стороны,
// при повторной - только тех, чья сторона была сброшена в waiting.
func (s *reviewService) queueReviewerNotifications(ctx context.Context, tx pgx.Tx, task *entities.Task, report *entities.TaskReport, requiresTech bool, transition string) error {
	notifyLogist := true
	notifyTech := requiresTech
	if transition == constants.TransitionResubmit {
		notifyLogist = report.LogistApproval == constants.ApprovalWaiting
		notifyTech = requiresTech && report.TechApproval == constants.ApprovalWaiting
	}

	if notifyLogist {
		if _, err := s.notificationSvc.QueueInTx(ctx, tx, task.CreatorID, &task.ID,
			fmt.Sprintf("Задача №%d: отчёт ожидает вашей проверки", task.ID)); err != nil {
			return err
		}
	}
	if notifyTech {
		techUsers, err := s.userRepo.List(ctx, constants.RoleTechSupp)
		if err != nil {
			return err
		}
		for _, u := range techUsers {
			if !u.IsActive {
				continue
			}
			if _, err := s.notificationSvc.QueueInTx(ctx, tx, u.ID, &task.ID,
				fmt.Sprintf("Задача №%d: отчёт ожидает технической проверки", task.ID)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Review - решение проверяющего. Каждая запись меняет только поле
// вызывающей стороны; completed наступает автоматически, когда оба
// согласия собраны.
func (s *reviewService) Review(ctx context.Context, actor authz.Actor, taskID uint64, payload dto.ReviewReportDTO) (*dto.ReportDTO, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != constants.StatusInspection {
		return nil, apperrors.PreconditionFailed("задача не находится на проверке")
	}

	requiresTech, err := s.requiresTechReview(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReview(actor, requiresTech) {
		return nil, apperrors.Forbidden("согласование отчётов недоступно этой роли")
	}
	isReject := payload.Decision == "reject"
	if isReject && !authz.CanReject(actor) {
		// Техподдержке доступно только согласование.
		return nil, apperrors.PreconditionFailed("отклонение недоступно технической поддержке")
	}

	var report *entities.TaskReport
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		report, err = s.reportRepo.FindLatestByTaskIDInTx(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		oldPair := approvalPair(report)

		decision := constants.ApprovalApproved
		if isReject {
			decision = constants.ApprovalRejected
		}
		// Техподдержка пишет свою сторону, логист и админ - свою.
		if actor.IsTechSupp() {
			report.TechApproval = decision
		} else {
			report.LogistApproval = decision
		}

		var comment *string
		if payload.Comment != "" {
			comment = &payload.Comment
		}
		if err := s.reportRepo.UpdateApprovalsInTx(ctx, tx, report.ID,
			report.LogistApproval, report.TechApproval, comment); err != nil {
			return err
		}
		report.ReviewComment = comment

		finalized := isFinalizedApproved(report, requiresTech)
		if isReject {
			if err := s.taskRepo.UpdateStatusInTx(ctx, tx, task.ID, constants.StatusInspection, constants.StatusReturned); err != nil {
				return err
			}
		} else if finalized {
			if err := s.taskRepo.UpdateStatusInTx(ctx, tx, task.ID, constants.StatusInspection, constants.StatusCompleted); err != nil {
				return err
			}
		}

		fresh, err := s.taskRepo.FindForUpdateInTx(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		*task = *fresh

		newPair := approvalPair(report)
		relatedType := "report"
		if err := s.historySvc.RecordInTx(ctx, tx, task, HistoryRow{
			UserID:      actor.ID,
			EventType:   constants.EventReportStatusChanged,
			OldValue:    &oldPair,
			NewValue:    &newPair,
			RelatedID:   &report.ID,
			RelatedType: &relatedType,
			Comment:     comment,
		}); err != nil {
			return err
		}

		if isReject {
			oldStatus, newStatus := constants.StatusInspection, constants.StatusReturned
			if err := s.historySvc.RecordInTx(ctx, tx, task, HistoryRow{
				UserID:    actor.ID,
				EventType: constants.EventStatusChanged,
				OldValue:  &oldStatus,
				NewValue:  &newStatus,
			}); err != nil {
				return err
			}
			text := fmt.Sprintf("Задача №%d: отчёт отклонён", task.ID)
			if comment != nil {
				text += ": " + *comment
			}
			_, err = s.notificationSvc.QueueInTx(ctx, tx, report.InstallerID, &task.ID, text)
			return err
		}

		if finalized {
			// Терминальная строка истории: оба согласия собраны.
			oldStatus, newStatus := constants.StatusInspection, constants.StatusCompleted
			if err := s.historySvc.RecordInTx(ctx, tx, task, HistoryRow{
				UserID:    actor.ID,
				EventType: constants.EventStatusChanged,
				OldValue:  &oldStatus,
				NewValue:  &newStatus,
			}); err != nil {
				return err
			}
			_, err = s.notificationSvc.QueueInTx(ctx, tx, report.InstallerID, &task.ID,
				fmt.Sprintf("Задача №%d завершена, вознаграждение %.2f", task.ID, task.InstallerReward))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishHistoryRecorded(ctx, s.bus, task, actor.ID, constants.EventReportStatusChanged)
	return reportToDTO(report), nil
}

func (s *reviewService) GetReports(ctx context.Context, actor authz.Actor, taskID uint64) ([]dto.ReportDTO, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadTask(actor, task) {
		return nil, apperrors.NotFound("запись не найдена")
	}

	reports, err := s.reportRepo.FindByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ReportDTO, 0, len(reports))
	for i := range reports {
		result = append(result, *reportToDTO(&reports[i]))
	}
	return result, nil
}

func reportToDTO(r *entities.TaskReport) *dto.ReportDTO {
	return &dto.ReportDTO{
		ID:             r.ID,
		TaskID:         r.TaskID,
		InstallerID:    r.InstallerID,
		Text:           r.Text,
		StorageKeys:    r.StorageKeys,
		LogistApproval: r.LogistApproval,
		TechApproval:   r.TechApproval,
		ReviewComment:  r.ReviewComment,
		ReviewedAt:     r.ReviewedAt,
		CreatedAt:      r.CreatedAt,
	}
}
