package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dispatch-system/internal/entities"
)

func fptr(v float64) *float64 { return &v }

func TestCalculatePrices(t *testing.T) {
	t.Run("суммы по набору видов работ", func(t *testing.T) {
		client, reward := calculatePrices([]entities.WorkType{
			{ID: 1, ClientPrice: 3500, InstallerPrice: fptr(2000)},
			{ID: 2, ClientPrice: 1500, InstallerPrice: fptr(900)},
		})
		assert.Equal(t, 5000.0, client)
		assert.Equal(t, 2900.0, reward)
	})

	t.Run("дубли схлопываются", func(t *testing.T) {
		client, reward := calculatePrices([]entities.WorkType{
			{ID: 1, ClientPrice: 3500, InstallerPrice: fptr(2000)},
			{ID: 1, ClientPrice: 3500, InstallerPrice: fptr(2000)},
			{ID: 1, ClientPrice: 3500, InstallerPrice: fptr(2000)},
		})
		assert.Equal(t, 3500.0, client)
		assert.Equal(t, 2000.0, reward)
	})

	t.Run("фолбэк вознаграждения на клиентскую цену", func(t *testing.T) {
		client, reward := calculatePrices([]entities.WorkType{
			{ID: 1, ClientPrice: 2500, InstallerPrice: nil},
			{ID: 2, ClientPrice: 1000, InstallerPrice: fptr(400)},
		})
		assert.Equal(t, 3500.0, client)
		assert.Equal(t, 2900.0, reward)
	})

	t.Run("пустой набор", func(t *testing.T) {
		client, reward := calculatePrices(nil)
		assert.Zero(t, client)
		assert.Zero(t, reward)
	})
}
