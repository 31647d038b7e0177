package statemachine

import (
	"fmt"
	"strings"

	"restaurant-api/models"
)

// Transition defines a recommended status change and who usually performs it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor string             `json:"actor"` // "waiter", "chef", "admin"
}

// recommendedFlow is the kitchen flow staff clients drive orders through.
// It is only enforced when strict transitions are switched on.
var recommendedFlow = []Transition{
	// Waiter accepts the order at the table
	{From: models.StatusPending, To: models.StatusConfirmed, Actor: "waiter"},
	// Kitchen starts cooking
	{From: models.StatusConfirmed, To: models.StatusPreparing, Actor: "chef"},
	// Kitchen puts the plates on the pass
	{From: models.StatusPreparing, To: models.StatusReady, Actor: "chef"},
	// Waiter served and settled
	{From: models.StatusReady, To: models.StatusCompleted, Actor: "waiter"},
}

type transitionKey struct {
	From models.OrderStatus
	To   models.OrderStatus
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range recommendedFlow {
		m[transitionKey{t.From, t.To}] = true
	}
	return m
}()

// settable are the statuses a staff member may set; pending is only ever initial
var settable = map[models.OrderStatus]bool{
	models.StatusConfirmed: true,
	models.StatusPreparing: true,
	models.StatusReady:     true,
	models.StatusCompleted: true,
}

// stampColumns maps a status to the timestamp column written when entering it.
// preparing has no timestamp.
var stampColumns = map[models.OrderStatus]string{
	models.StatusConfirmed: "confirmed_at",
	models.StatusReady:     "ready_at",
	models.StatusCompleted: "completed_at",
}

// stampOrder is the order timestamps are expected to appear in
var stampOrder = []models.OrderStatus{
	models.StatusConfirmed,
	models.StatusReady,
	models.StatusCompleted,
}

// StampGuard lists the columns that must all be NULL for the timestamp of
// status to be written: its own column and every later one. A timestamp is
// written once and never lands after a later stage was already stamped.
func StampGuard(status models.OrderStatus) []string {
	for i, s := range stampOrder {
		if s == status {
			cols := make([]string, 0, len(stampOrder)-i)
			for _, later := range stampOrder[i:] {
				cols = append(cols, stampColumns[later])
			}
			return cols
		}
	}
	return nil
}

// ParseStatus accepts a status a staff member is allowed to set
func ParseStatus(s string) (models.OrderStatus, error) {
	status := models.OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !settable[status] {
		return "", fmt.Errorf("invalid status %q: must be one of %s", s, describe(SettableStatuses()))
	}
	return status, nil
}

// SettableStatuses lists the statuses accepted by ParseStatus in flow order
func SettableStatuses() []models.OrderStatus {
	return []models.OrderStatus{
		models.StatusConfirmed,
		models.StatusPreparing,
		models.StatusReady,
		models.StatusCompleted,
	}
}

// StampColumn returns the timestamp column for status, or "" when none is kept
func StampColumn(status models.OrderStatus) string {
	return stampColumns[status]
}

// ValidTransitionsFrom returns the recommended next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range recommendedFlow {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CanTransition checks a move against the recommended flow. Re-setting the
// current status is always accepted.
func CanTransition(from, to models.OrderStatus) error {
	if from == to || transitionMap[transitionKey{From: from, To: to}] {
		return nil
	}
	return fmt.Errorf("invalid transition: %s → %s is not allowed. Valid transitions from %s are: %s",
		from, to, from, describeValidFrom(from))
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	return describe(nexts)
}

func describe(statuses []models.OrderStatus) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// GetAllTransitions returns the full recommended flow for documentation
func GetAllTransitions() []Transition {
	return recommendedFlow
}

// Stamps returns the status to timestamp column table for documentation
func Stamps() map[models.OrderStatus]string {
	out := make(map[models.OrderStatus]string, len(stampColumns))
	for k, v := range stampColumns {
		out[k] = v
	}
	return out
}
