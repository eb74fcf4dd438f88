package property

import (
	"strings"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketStatus represents the progress of a maintenance ticket
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// IsOpen returns true while work is still outstanding
func (s TicketStatus) IsOpen() bool {
	return s == TicketStatusOpen || s == TicketStatusInProgress
}

// TicketPriority ranks maintenance urgency
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// MaintenanceTicket is a repair request on a property
type MaintenanceTicket struct {
	shared.OwnedAggregateRoot
	PropertyID uuid.UUID        `json:"property_id"`
	TenantID   *uuid.UUID       `json:"tenant_id"`
	Title      string           `json:"title"`
	Priority   TicketPriority   `json:"priority"`
	Status     TicketStatus     `json:"status"`
	Cost       *decimal.Decimal `json:"cost"`
	ResolvedAt *time.Time       `json:"resolved_at"`
}

// NewMaintenanceTicket opens a ticket
func NewMaintenanceTicket(userID, propertyID uuid.UUID, title string, priority TicketPriority, now time.Time) (*MaintenanceTicket, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TICKET_TITLE", "Ticket title cannot be empty")
	}
	if priority == "" {
		priority = TicketPriorityMedium
	}
	return &MaintenanceTicket{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID, now),
		PropertyID:         propertyID,
		Title:              title,
		Priority:           priority,
		Status:             TicketStatusOpen,
	}, nil
}

// Resolve closes the ticket with an optional cost
func (m *MaintenanceTicket) Resolve(cost *decimal.Decimal, now time.Time) error {
	if !m.Status.IsOpen() {
		return shared.NewDomainError("INVALID_STATE", "Ticket is already resolved")
	}
	resolved := now
	m.Status = TicketStatusResolved
	m.Cost = cost
	m.ResolvedAt = &resolved
	m.Touch(now)
	m.IncrementVersion()
	return nil
}

// ResolutionTime returns how long the ticket stayed open, if resolved
func (m *MaintenanceTicket) ResolutionTime() (time.Duration, bool) {
	if m.ResolvedAt == nil {
		return 0, false
	}
	return m.ResolvedAt.Sub(m.CreatedAt), true
}
