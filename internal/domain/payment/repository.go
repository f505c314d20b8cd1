package payment

import (
	"context"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// ListFilter narrows payment listings. From/To bound the payment date and
// ConfirmedFrom/ConfirmedTo bound the staff decision time; all four are
// half-open [from, to) windows. Zero values mean "no constraint".
type ListFilter struct {
	MemberID      common.ID
	Status        Status
	Method        Method
	From          time.Time
	To            time.Time
	ConfirmedFrom time.Time
	ConfirmedTo   time.Time
	Pagination    common.Pagination
}

// PaymentRepository is the persistence port for the Payment bounded context.
type PaymentRepository interface {
	// Payment
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id common.ID) (*Payment, error)
	GetByReference(ctx context.Context, reference string) (*Payment, error)
	// ListPending returns all unconfirmed payments, oldest first, so staff
	// work the queue in arrival order.
	ListPending(ctx context.Context) ([]*Payment, error)
	// ListByMember returns the member's payment history, newest first,
	// capped at limit rows.
	ListByMember(ctx context.Context, memberID common.ID, limit int) ([]*Payment, error)
	List(ctx context.Context, filter ListFilter) ([]*Payment, int64, error)
	Update(ctx context.Context, p *Payment) error

	// Walk-in payment
	CreateWalkin(ctx context.Context, w *WalkinPayment) error
	ListWalkinByRange(ctx context.Context, from, to time.Time) ([]*WalkinPayment, error)

	// Transaction
	WithTx(ctx context.Context, fn func(PaymentRepository) error) error
}
