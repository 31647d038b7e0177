package statemachine

import (
	"testing"

	"restaurant-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"confirmed", "preparing", "ready", "completed", " Ready "} {
		_, err := ParseStatus(s)
		assert.NoError(t, err, s)
	}

	for _, s := range []string{"pending", "cancelled", ""} {
		_, err := ParseStatus(s)
		assert.Error(t, err, s)
	}
}

func TestStampColumn(t *testing.T) {
	assert.Equal(t, "confirmed_at", StampColumn(models.StatusConfirmed))
	assert.Equal(t, "ready_at", StampColumn(models.StatusReady))
	assert.Equal(t, "completed_at", StampColumn(models.StatusCompleted))
	assert.Empty(t, StampColumn(models.StatusPreparing))
	assert.Empty(t, StampColumn(models.StatusPending))
}

func TestStampGuard(t *testing.T) {
	assert.Equal(t, []string{"confirmed_at", "ready_at", "completed_at"}, StampGuard(models.StatusConfirmed))
	assert.Equal(t, []string{"ready_at", "completed_at"}, StampGuard(models.StatusReady))
	assert.Equal(t, []string{"completed_at"}, StampGuard(models.StatusCompleted))
	assert.Nil(t, StampGuard(models.StatusPreparing))
}

func TestCanTransition(t *testing.T) {
	require.NoError(t, CanTransition(models.StatusPending, models.StatusConfirmed))
	require.NoError(t, CanTransition(models.StatusReady, models.StatusCompleted))
	require.NoError(t, CanTransition(models.StatusReady, models.StatusReady))

	err := CanTransition(models.StatusCompleted, models.StatusConfirmed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none (terminal state)")

	err = CanTransition(models.StatusPending, models.StatusReady)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confirmed")
}

func TestValidTransitionsFrom(t *testing.T) {
	assert.Equal(t, []models.OrderStatus{models.StatusPreparing}, ValidTransitionsFrom(models.StatusConfirmed))
	assert.Empty(t, ValidTransitionsFrom(models.StatusCompleted))
	assert.Len(t, GetAllTransitions(), 4)
}
