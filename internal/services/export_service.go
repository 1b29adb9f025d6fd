// Файл: internal/services/export_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"dispatch-system/internal/authz"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type ExportServiceInterface interface {
	ExportTimelineXLSX(ctx context.Context, actor authz.Actor, taskID uint64) (*bytes.Buffer, string, error)
}

type exportService struct {
	historySvc HistoryServiceInterface
	logger     *zap.Logger
}

func NewExportService(historySvc HistoryServiceInterface, logger *zap.Logger) ExportServiceInterface {
	return &exportService{historySvc: historySvc, logger: logger}
}

// ExportTimelineXLSX выгружает историю задачи в xlsx-файл.
// Права доступа проверяет GetTimeline.
func (s *exportService) ExportTimelineXLSX(ctx context.Context, actor authz.Actor, taskID uint64) (*bytes.Buffer, string, error) {
	timeline, err := s.historySvc.GetTimeline(ctx, actor, taskID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("не удалось закрыть xlsx-файл", zap.Error(err))
		}
	}()

	const sheet = "История"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", err
	}

	headers := []string{"Дата", "Событие", "Статус", "Автор", "Описание", "Было", "Стало"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, "", err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err == nil {
		lastCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheet, "A1", lastCell, headerStyle)
	}

	for rowIdx, event := range timeline {
		row := rowIdx + 2
		values := []interface{}{
			event.CreatedAt,
			event.EventType,
			event.Action,
			fmt.Sprintf("%s (%s)", event.Actor.Fio, event.Actor.Role),
			strings.Join(event.Lines, "; "),
			deref(event.OldValue),
			deref(event.NewValue),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, "", err
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "D", "E", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("task_%d_history.xlsx", taskID)
	return buf, filename, nil
}
