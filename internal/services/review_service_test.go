package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dispatch-system/internal/entities"
	"dispatch-system/pkg/constants"
)

func report(logist, tech string) *entities.TaskReport {
	return &entities.TaskReport{LogistApproval: logist, TechApproval: tech}
}

func TestIsFinalizedApproved(t *testing.T) {
	testCases := []struct {
		name         string
		logist       string
		tech         string
		requiresTech bool
		expected     bool
	}{
		{
			name:   "обе стороны согласовали",
			logist: constants.ApprovalApproved, tech: constants.ApprovalApproved,
			requiresTech: true, expected: true,
		},
		{
			name:   "техпроверка не требуется - достаточно логиста",
			logist: constants.ApprovalApproved, tech: constants.ApprovalWaiting,
			requiresTech: false, expected: true,
		},
		{
			name:   "техподдержка ещё не решила",
			logist: constants.ApprovalApproved, tech: constants.ApprovalWaiting,
			requiresTech: true, expected: false,
		},
		{
			name:   "логист ещё не решил",
			logist: constants.ApprovalWaiting, tech: constants.ApprovalApproved,
			requiresTech: true, expected: false,
		},
		{
			name:   "отклонение не финализирует",
			logist: constants.ApprovalRejected, tech: constants.ApprovalApproved,
			requiresTech: true, expected: false,
		},
		{
			name:   "без техпроверки решение техподдержки не учитывается",
			logist: constants.ApprovalApproved, tech: constants.ApprovalRejected,
			requiresTech: false, expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := isFinalizedApproved(report(tc.logist, tc.tech), tc.requiresTech)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestApprovalPair(t *testing.T) {
	assert.Equal(t, "logist=approved, tech=waiting",
		approvalPair(report(constants.ApprovalApproved, constants.ApprovalWaiting)))
}

func TestResetRejectedSides(t *testing.T) {
	testCases := []struct {
		name       string
		logist     string
		tech       string
		wantLogist string
		wantTech   string
	}{
		{
			name:   "отклонение логиста сбрасывается, согласие техподдержки сохраняется",
			logist: constants.ApprovalRejected, tech: constants.ApprovalApproved,
			wantLogist: constants.ApprovalWaiting, wantTech: constants.ApprovalApproved,
		},
		{
			name:   "согласие логиста переживает повторную отправку",
			logist: constants.ApprovalApproved, tech: constants.ApprovalRejected,
			wantLogist: constants.ApprovalApproved, wantTech: constants.ApprovalWaiting,
		},
		{
			name:   "обе стороны отклонили - обе ждут заново",
			logist: constants.ApprovalRejected, tech: constants.ApprovalRejected,
			wantLogist: constants.ApprovalWaiting, wantTech: constants.ApprovalWaiting,
		},
		{
			name:   "ожидающие стороны не трогаются",
			logist: constants.ApprovalWaiting, tech: constants.ApprovalApproved,
			wantLogist: constants.ApprovalWaiting, wantTech: constants.ApprovalApproved,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logist, tech := resetRejectedSides(tc.logist, tc.tech)
			assert.Equal(t, tc.wantLogist, logist)
			assert.Equal(t, tc.wantTech, tech)
		})
	}
}
