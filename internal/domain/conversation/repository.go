package conversation

import (
	"context"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// ConversationRepository is the persistence port for chat transcripts.
//
// Ownership is enforced in the queries: a conversation is only reachable
// through the member or session key it belongs to, so a guessed ID never
// exposes someone else's transcript.
type ConversationRepository interface {
	Create(ctx context.Context, c *Conversation) error
	// GetForMember loads a member-owned conversation with its messages.
	GetForMember(ctx context.Context, id common.ID, memberID common.ID) (*Conversation, error)
	// GetForSession loads a session-owned conversation with its messages.
	GetForSession(ctx context.Context, id common.ID, sessionKey string) (*Conversation, error)

	AppendMessage(ctx context.Context, id common.ID, msg Message) error
	SetTitle(ctx context.Context, id common.ID, title string) error

	// ListByMember returns conversation summaries (no messages), most
	// recently updated first.
	ListByMember(ctx context.Context, memberID common.ID, p common.Pagination) ([]*Conversation, int64, error)
	ListBySession(ctx context.Context, sessionKey string, p common.Pagination) ([]*Conversation, int64, error)

	Delete(ctx context.Context, id common.ID) error
	// DeleteUpdatedBefore removes conversations idle since the cutoff and
	// returns how many were dropped. Used by the retention sweep.
	DeleteUpdatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
