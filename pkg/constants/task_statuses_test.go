package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	testCases := []struct {
		name     string
		from     string
		event    string
		expected string
		ok       bool
	}{
		{name: "новая принимается", from: StatusNew, event: TransitionAccept, expected: StatusAccepted, ok: true},
		{name: "принятая - выезд", from: StatusAccepted, event: TransitionEnRoute, expected: StatusOnTheRoad, ok: true},
		{name: "принятая - сразу к работе", from: StatusAccepted, event: TransitionBegin, expected: StatusStarted, ok: true},
		{name: "в пути - прибытие", from: StatusOnTheRoad, event: TransitionArrive, expected: StatusOnSite, ok: true},
		{name: "в пути - отчёт без прибытия", from: StatusOnTheRoad, event: TransitionSubmit, expected: StatusInspection, ok: true},
		{name: "на месте - начало работ", from: StatusOnSite, event: TransitionBegin, expected: StatusStarted, ok: true},
		{name: "на месте - отчёт", from: StatusOnSite, event: TransitionSubmit, expected: StatusInspection, ok: true},
		{name: "в работе - отчёт", from: StatusStarted, event: TransitionSubmit, expected: StatusInspection, ok: true},
		{name: "возвращённая - повторная отправка", from: StatusReturned, event: TransitionResubmit, expected: StatusInspection, ok: true},

		{name: "принятая без выезда не отчитывается", from: StatusAccepted, event: TransitionSubmit, ok: false},
		{name: "новая не начинает работы", from: StatusNew, event: TransitionBegin, ok: false},
		{name: "новая не отчитывается", from: StatusNew, event: TransitionSubmit, ok: false},
		{name: "на проверке нет переходов исполнителя", from: StatusInspection, event: TransitionSubmit, ok: false},
		{name: "завершённая терминальна", from: StatusCompleted, event: TransitionAccept, ok: false},
		{name: "возвращённая не принимается заново", from: StatusReturned, event: TransitionAccept, ok: false},
		{name: "неизвестный статус", from: "draft", event: TransitionAccept, ok: false},
		{name: "неизвестное событие", from: StatusNew, event: "jump", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next, ok := NextStatus(tc.from, tc.event)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, next)
			}
		})
	}
}

func TestIsFinalStatus(t *testing.T) {
	assert.True(t, IsFinalStatus(StatusCompleted))

	for _, status := range []string{
		StatusNew, StatusAccepted, StatusOnTheRoad, StatusOnSite,
		StatusStarted, StatusInspection, StatusReturned,
	} {
		assert.False(t, IsFinalStatus(status), status)
	}
}

func TestIsKnownStatus(t *testing.T) {
	assert.True(t, IsKnownStatus(StatusOnTheRoad))
	assert.False(t, IsKnownStatus("draft"))
	assert.False(t, IsKnownStatus(""))
}
