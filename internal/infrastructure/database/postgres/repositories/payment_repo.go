package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/payment"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// paymentColumns joins through the membership to the plan catalog so
// PlanName is populated on load.
const paymentColumns = `pay.id, pay.member_id, pay.membership_id, p.name, pay.reference, pay.amount, pay.method, pay.status, pay.payment_date, pay.confirmed_by, pay.confirmed_at, pay.created_at, pay.updated_at`

const paymentJoin = `payments pay JOIN memberships ms ON ms.id = pay.membership_id JOIN plans p ON p.id = ms.plan_id`

type postgresPaymentRepo struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

func NewPostgresPaymentRepo(conn *postgres.Connection, log logging.Logger) payment.PaymentRepository {
	return &postgresPaymentRepo{
		conn:     conn,
		log:      log,
		executor: conn.Pool(),
	}
}

func (r *postgresPaymentRepo) WithTx(ctx context.Context, fn func(payment.PaymentRepository) error) error {
	tx, err := r.conn.Pool().Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin transaction")
	}

	txRepo := &postgresPaymentRepo{
		conn:     r.conn,
		log:      r.log,
		executor: tx,
	}

	if err := fn(txRepo); err != nil {
		tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit transaction")
	}
	return nil
}

func (r *postgresPaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (id, member_id, membership_id, reference, amount, method, status, payment_date, confirmed_by, confirmed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.executor.Exec(ctx, query,
		p.ID, p.MemberID, p.MembershipID, p.Reference, p.Amount, p.Method, p.Status,
		p.PaymentDate, idOrNil(p.ConfirmedBy), p.ConfirmedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if uniqueViolation(err) != "" {
			return errors.Conflict("payment reference " + p.Reference + " already exists")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create payment")
	}
	return nil
}

func (r *postgresPaymentRepo) GetByID(ctx context.Context, id common.ID) (*payment.Payment, error) {
	row := r.executor.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM `+paymentJoin+` WHERE pay.id = $1`, id)
	p, err := scanPayment(row)
	if isNoRows(err) {
		return nil, errors.New(errors.ErrCodePaymentNotFound, "payment "+string(id)+" not found")
	}
	return p, err
}

func (r *postgresPaymentRepo) GetByReference(ctx context.Context, reference string) (*payment.Payment, error) {
	row := r.executor.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM `+paymentJoin+` WHERE pay.reference = $1`, reference)
	p, err := scanPayment(row)
	if isNoRows(err) {
		return nil, errors.New(errors.ErrCodePaymentNotFound, "no payment with reference "+reference)
	}
	return p, err
}

func (r *postgresPaymentRepo) ListPending(ctx context.Context) ([]*payment.Payment, error) {
	rows, err := r.executor.Query(ctx, `
		SELECT `+paymentColumns+` FROM `+paymentJoin+`
		WHERE pay.status = $1
		ORDER BY pay.payment_date, pay.id
	`, payment.StatusPending)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list pending payments")
	}
	return scanPayments(rows)
}

func (r *postgresPaymentRepo) ListByMember(ctx context.Context, memberID common.ID, limit int) ([]*payment.Payment, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.executor.Query(ctx, `
		SELECT `+paymentColumns+` FROM `+paymentJoin+`
		WHERE pay.member_id = $1
		ORDER BY pay.payment_date DESC, pay.id
		LIMIT $2
	`, memberID, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list member payments")
	}
	return scanPayments(rows)
}

func (r *postgresPaymentRepo) List(ctx context.Context, filter payment.ListFilter) ([]*payment.Payment, int64, error) {
	where := []string{"TRUE"}
	args := []any{}

	add := func(cond string, val any) {
		args = append(args, val)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.MemberID != "" {
		add("pay.member_id = $%d", filter.MemberID)
	}
	if filter.Status != "" {
		add("pay.status = $%d", filter.Status)
	}
	if filter.Method != "" {
		add("pay.method = $%d", filter.Method)
	}
	if !filter.From.IsZero() {
		add("pay.payment_date >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("pay.payment_date < $%d", filter.To)
	}
	if !filter.ConfirmedFrom.IsZero() {
		add("pay.confirmed_at >= $%d", filter.ConfirmedFrom)
	}
	if !filter.ConfirmedTo.IsZero() {
		add("pay.confirmed_at < $%d", filter.ConfirmedTo)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.executor.QueryRow(ctx,
		`SELECT COUNT(*) FROM payments pay WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count payments")
	}

	limit, offset := pageWindow(filter.Pagination)
	args = append(args, limit, offset)
	rows, err := r.executor.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s ORDER BY pay.payment_date DESC, pay.id LIMIT $%d OFFSET $%d`,
		paymentColumns, paymentJoin, cond, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list payments")
	}
	payments, err := scanPayments(rows)
	return payments, total, err
}

func (r *postgresPaymentRepo) Update(ctx context.Context, p *payment.Payment) error {
	query := `
		UPDATE payments SET
			amount = $2, method = $3, status = $4, payment_date = $5,
			confirmed_by = $6, confirmed_at = $7, updated_at = $8
		WHERE id = $1
	`
	tag, err := r.executor.Exec(ctx, query,
		p.ID, p.Amount, p.Method, p.Status, p.PaymentDate,
		idOrNil(p.ConfirmedBy), p.ConfirmedAt, p.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update payment")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodePaymentNotFound, "payment "+string(p.ID)+" not found")
	}
	return nil
}

func (r *postgresPaymentRepo) CreateWalkin(ctx context.Context, w *payment.WalkinPayment) error {
	query := `
		INSERT INTO walkin_payments (id, pass_id, pass_name, customer_name, reference, amount, method, payment_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.executor.Exec(ctx, query,
		w.ID, w.PassID, w.PassName, w.CustomerName, w.Reference, w.Amount, w.Method,
		w.PaymentDate, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		if uniqueViolation(err) != "" {
			return errors.Conflict("walk-in reference " + w.Reference + " already exists")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create walk-in payment")
	}
	return nil
}

func (r *postgresPaymentRepo) ListWalkinByRange(ctx context.Context, from, to time.Time) ([]*payment.WalkinPayment, error) {
	rows, err := r.executor.Query(ctx, `
		SELECT id, pass_id, pass_name, customer_name, reference, amount, method, payment_date, created_at, updated_at
		FROM walkin_payments
		WHERE payment_date >= $1 AND payment_date < $2
		ORDER BY payment_date, id
	`, from, to)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list walk-in payments")
	}
	defer rows.Close()

	var out []*payment.WalkinPayment
	for rows.Next() {
		w := &payment.WalkinPayment{}
		if err := rows.Scan(&w.ID, &w.PassID, &w.PassName, &w.CustomerName, &w.Reference,
			&w.Amount, &w.Method, &w.PaymentDate, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan walk-in payment")
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func scanPayment(row rowScanner) (*payment.Payment, error) {
	p := &payment.Payment{}
	var confirmedBy *string
	err := row.Scan(
		&p.ID, &p.MemberID, &p.MembershipID, &p.PlanName, &p.Reference, &p.Amount,
		&p.Method, &p.Status, &p.PaymentDate, &confirmedBy, &p.ConfirmedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan payment")
	}
	if confirmedBy != nil {
		id := common.ID(*confirmedBy)
		p.ConfirmedBy = &id
	}
	return p, nil
}

func scanPayments(rows pgx.Rows) ([]*payment.Payment, error) {
	defer rows.Close()
	var out []*payment.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// idOrNil maps a nil ID pointer to NULL.
func idOrNil(id *common.ID) *string {
	if id == nil {
		return nil
	}
	s := string(*id)
	return &s
}
