// Package audit implements the audit trail for privileged chatbot
// operations: every staff or admin action dispatched through chat is
// recorded here.
package audit

import (
	"strings"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// Action verbs recorded by the application layer. Kept as a closed
// vocabulary so the audit UI can filter on them.
const (
	ActionDataExport      = "data_export"
	ActionReportGenerated = "report_generated"
	ActionPaymentReceived = "payment_received"
	ActionUserUpdated     = "user_updated"
	ActionWalkinSale      = "walkin_sale"
	ActionChatQuery       = "chat_query"
)

// Severity grades an audit entry.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

func (s Severity) String() string { return string(s) }

// IsValid reports whether s is one of the defined grades.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

// Entry is one audit record. Entries are append-only; there is no update
// path.
type Entry struct {
	ID common.ID `json:"id"`

	ActorID   common.ID   `json:"actor_id"`
	ActorName string      `json:"actor_name"`
	ActorRole common.Role `json:"actor_role"`

	// Action is a stable machine-readable verb such as ActionPaymentReceived.
	Action string `json:"action"`

	// Description is the human-readable account shown in the audit UI.
	Description string `json:"description"`

	Severity Severity        `json:"severity"`
	Metadata common.Metadata `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewEntry creates an audit record. Severity defaults to info when empty.
func NewEntry(actorID common.ID, actorName string, actorRole common.Role, action, description string, severity Severity, metadata common.Metadata) (*Entry, error) {
	if actorID == "" {
		return nil, errors.InvalidParam("audit actor id must not be empty")
	}
	if strings.TrimSpace(action) == "" {
		return nil, errors.InvalidParam("audit action must not be empty")
	}
	if severity == "" {
		severity = SeverityInfo
	}
	if !severity.IsValid() {
		return nil, errors.InvalidParam("unknown audit severity " + string(severity))
	}
	return &Entry{
		ID:          common.NewID(),
		ActorID:     actorID,
		ActorName:   actorName,
		ActorRole:   actorRole,
		Action:      action,
		Description: description,
		Severity:    severity,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
