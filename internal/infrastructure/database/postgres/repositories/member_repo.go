package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/member"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

const memberColumns = `id, first_name, last_name, email, username, phone, address, birthdate, role, kiosk_pin, active, created_at, updated_at`

// membershipColumns joins the plan catalog so PlanName is populated on load.
const membershipColumns = `ms.id, ms.member_id, ms.plan_id, p.name, ms.start_date, ms.end_date, ms.status, ms.cancelled_at, ms.created_at, ms.updated_at`

type postgresMemberRepo struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

func NewPostgresMemberRepo(conn *postgres.Connection, log logging.Logger) member.MemberRepository {
	return &postgresMemberRepo{
		conn:     conn,
		log:      log,
		executor: conn.Pool(),
	}
}

func (r *postgresMemberRepo) WithTx(ctx context.Context, fn func(member.MemberRepository) error) error {
	tx, err := r.conn.Pool().Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin transaction")
	}

	txRepo := &postgresMemberRepo{
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

// ─────────────────────────────────────────────────────────────────────────────
// Members
// ─────────────────────────────────────────────────────────────────────────────

func (r *postgresMemberRepo) Create(ctx context.Context, m *member.Member) error {
	query := `
		INSERT INTO members (id, first_name, last_name, email, username, phone, address, birthdate, role, kiosk_pin, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.executor.Exec(ctx, query,
		m.ID, m.FirstName, m.LastName, m.Email, m.Username, m.Phone, m.Address,
		m.Birthdate, m.Role, nullIfEmpty(m.KioskPIN), m.Active, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		switch uniqueViolation(err) {
		case "members_email_key":
			return errors.New(errors.ErrCodeMemberDuplicateEmail,
				"a member with email "+m.Email+" already exists")
		case "members_username_key":
			return errors.Conflict("username " + m.Username + " already taken")
		case "members_kiosk_pin_key":
			return errors.Conflict("kiosk PIN already in use")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create member")
	}
	return nil
}

func (r *postgresMemberRepo) GetByID(ctx context.Context, id common.ID) (*member.Member, error) {
	row := r.executor.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
	m, err := scanMember(row)
	if isNoRows(err) {
		return nil, errors.New(errors.ErrCodeMemberNotFound, "member "+string(id)+" not found")
	}
	return m, err
}

func (r *postgresMemberRepo) GetByEmail(ctx context.Context, email string) (*member.Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.executor.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE email = $1`, email)
	m, err := scanMember(row)
	if isNoRows(err) {
		return nil, errors.New(errors.ErrCodeMemberNotFound, "no member with email "+email)
	}
	return m, err
}

func (r *postgresMemberRepo) GetByUsername(ctx context.Context, username string) (*member.Member, error) {
	row := r.executor.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE username = $1`, username)
	m, err := scanMember(row)
	if isNoRows(err) {
		return nil, errors.New(errors.ErrCodeMemberNotFound, "no member with username "+username)
	}
	return m, err
}

func (r *postgresMemberRepo) GetByKioskPIN(ctx context.Context, pin string) (*member.Member, error) {
	row := r.executor.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE kiosk_pin = $1 AND active`, pin)
	m, err := scanMember(row)
	if isNoRows(err) {
		return nil, errors.New(errors.ErrCodeMemberNotFound, "no member with that PIN")
	}
	return m, err
}

func (r *postgresMemberRepo) Search(ctx context.Context, query string, limit int) ([]*member.Member, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + strings.TrimSpace(query) + "%"
	rows, err := r.executor.Query(ctx, `
		SELECT `+memberColumns+` FROM members
		WHERE active AND role = $1
		  AND (first_name || ' ' || last_name ILIKE $2 OR email ILIKE $2 OR username ILIKE $2)
		ORDER BY created_at, id
		LIMIT $3
	`, common.RoleMember, pattern, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to search members")
	}
	return scanMembers(rows)
}

func (r *postgresMemberRepo) List(ctx context.Context, filter member.ListFilter) ([]*member.Member, int64, error) {
	where := []string{"TRUE"}
	args := []any{}

	if filter.Role != "" {
		args = append(args, filter.Role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.ActiveOnly {
		where = append(where, "active")
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf(
			"(first_name || ' ' || last_name ILIKE $%d OR email ILIKE $%d OR username ILIKE $%d)",
			len(args), len(args), len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.executor.QueryRow(ctx, `SELECT COUNT(*) FROM members WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count members")
	}

	limit, offset := pageWindow(filter.Pagination)
	args = append(args, limit, offset)
	rows, err := r.executor.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM members WHERE %s ORDER BY created_at, id LIMIT $%d OFFSET $%d`,
		memberColumns, cond, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list members")
	}
	members, err := scanMembers(rows)
	return members, total, err
}

func (r *postgresMemberRepo) Update(ctx context.Context, m *member.Member) error {
	query := `
		UPDATE members SET
			first_name = $2, last_name = $3, email = $4, username = $5, phone = $6,
			address = $7, birthdate = $8, role = $9, kiosk_pin = $10, active = $11, updated_at = $12
		WHERE id = $1
	`
	tag, err := r.executor.Exec(ctx, query,
		m.ID, m.FirstName, m.LastName, m.Email, m.Username, m.Phone,
		m.Address, m.Birthdate, m.Role, nullIfEmpty(m.KioskPIN), m.Active, m.UpdatedAt,
	)
	if err != nil {
		if uniqueViolation(err) != "" {
			return errors.Conflict("member update conflicts with an existing account")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update member")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeMemberNotFound, "member "+string(m.ID)+" not found")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Plans and walk-in passes
// ─────────────────────────────────────────────────────────────────────────────

func (r *postgresMemberRepo) CreatePlan(ctx context.Context, p *member.Plan) error {
	query := `
		INSERT INTO plans (id, name, description, price, duration_days, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.executor.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.DurationDays, p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if uniqueViolation(err) != "" {
			return errors.Conflict("a plan named " + p.Name + " already exists")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create plan")
	}
	return nil
}

func (r *postgresMemberRepo) GetPlanByID(ctx context.Context, id common.ID) (*member.Plan, error) {
	row := r.executor.QueryRow(ctx,
		`SELECT id, name, description, price, duration_days, active, created_at, updated_at FROM plans WHERE id = $1`, id)
	p, err := scanPlan(row)
	if isNoRows(err) {
		return nil, errors.NotFound("plan " + string(id) + " not found")
	}
	return p, err
}

func (r *postgresMemberRepo) GetPlanByName(ctx context.Context, name string) (*member.Plan, error) {
	row := r.executor.QueryRow(ctx,
		`SELECT id, name, description, price, duration_days, active, created_at, updated_at FROM plans WHERE LOWER(name) = LOWER($1)`, name)
	p, err := scanPlan(row)
	if isNoRows(err) {
		return nil, errors.NotFound("no plan named " + name)
	}
	return p, err
}

func (r *postgresMemberRepo) ListPlans(ctx context.Context, activeOnly bool) ([]*member.Plan, error) {
	query := `SELECT id, name, description, price, duration_days, active, created_at, updated_at FROM plans`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY price, name`

	rows, err := r.executor.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list plans")
	}
	defer rows.Close()

	var out []*member.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postgresMemberRepo) CreatePass(ctx context.Context, p *member.WalkinPass) error {
	query := `
		INSERT INTO walkin_passes (id, name, price, duration_days, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.executor.Exec(ctx, query,
		p.ID, p.Name, p.Price, p.DurationDays, p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if uniqueViolation(err) != "" {
			return errors.Conflict("a walk-in pass named " + p.Name + " already exists")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create walk-in pass")
	}
	return nil
}

func (r *postgresMemberRepo) GetPassByName(ctx context.Context, name string) (*member.WalkinPass, error) {
	row := r.executor.QueryRow(ctx,
		`SELECT id, name, price, duration_days, active, created_at, updated_at FROM walkin_passes WHERE LOWER(name) = LOWER($1)`, name)
	p := &member.WalkinPass{}
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.DurationDays, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if isNoRows(err) {
		return nil, errors.NotFound("no walk-in pass named " + name)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load walk-in pass")
	}
	return p, nil
}

func (r *postgresMemberRepo) ListPasses(ctx context.Context, activeOnly bool) ([]*member.WalkinPass, error) {
	query := `SELECT id, name, price, duration_days, active, created_at, updated_at FROM walkin_passes`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY price, name`

	rows, err := r.executor.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list walk-in passes")
	}
	defer rows.Close()

	var out []*member.WalkinPass
	for rows.Next() {
		p := &member.WalkinPass{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.DurationDays, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan walk-in pass")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Memberships
// ─────────────────────────────────────────────────────────────────────────────

func (r *postgresMemberRepo) CreateMembership(ctx context.Context, m *member.Membership) error {
	query := `
		INSERT INTO memberships (id, member_id, plan_id, start_date, end_date, status, cancelled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.executor.Exec(ctx, query,
		m.ID, m.MemberID, m.PlanID, m.StartDate, m.EndDate, m.Status, m.CancelledAt, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create membership")
	}
	return nil
}

func (r *postgresMemberRepo) GetMembershipByID(ctx context.Context, id common.ID) (*member.Membership, error) {
	row := r.executor.QueryRow(ctx,
		`SELECT `+membershipColumns+` FROM memberships ms JOIN plans p ON p.id = ms.plan_id WHERE ms.id = $1`, id)
	m, err := scanMembership(row)
	if isNoRows(err) {
		return nil, errors.New(errors.ErrCodeMembershipNotFound, "membership "+string(id)+" not found")
	}
	return m, err
}

func (r *postgresMemberRepo) ActiveMembership(ctx context.Context, memberID common.ID) (*member.Membership, error) {
	row := r.executor.QueryRow(ctx, `
		SELECT `+membershipColumns+` FROM memberships ms JOIN plans p ON p.id = ms.plan_id
		WHERE ms.member_id = $1 AND ms.status = $2
		ORDER BY ms.end_date DESC
		LIMIT 1
	`, memberID, member.MembershipActive)
	m, err := scanMembership(row)
	if isNoRows(err) {
		return nil, errors.New(errors.ErrCodeMembershipNotFound,
			"no active membership for member "+string(memberID))
	}
	return m, err
}

func (r *postgresMemberRepo) ListMembershipsByMember(ctx context.Context, memberID common.ID) ([]*member.Membership, error) {
	rows, err := r.executor.Query(ctx, `
		SELECT `+membershipColumns+` FROM memberships ms JOIN plans p ON p.id = ms.plan_id
		WHERE ms.member_id = $1
		ORDER BY ms.start_date DESC
	`, memberID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list memberships")
	}
	return scanMemberships(rows)
}

func (r *postgresMemberRepo) ListMemberships(ctx context.Context, filter member.MembershipFilter) ([]*member.Membership, error) {
	cond, args := membershipWhere(filter)
	rows, err := r.executor.Query(ctx, `
		SELECT `+membershipColumns+` FROM memberships ms JOIN plans p ON p.id = ms.plan_id
		WHERE `+cond+`
		ORDER BY ms.end_date, ms.id
	`, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list memberships")
	}
	return scanMemberships(rows)
}

func (r *postgresMemberRepo) CountMemberships(ctx context.Context, filter member.MembershipFilter) (int64, error) {
	cond, args := membershipWhere(filter)
	var total int64
	err := r.executor.QueryRow(ctx, `SELECT COUNT(*) FROM memberships ms WHERE `+cond, args...).Scan(&total)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count memberships")
	}
	return total, nil
}

func (r *postgresMemberRepo) UpdateMembership(ctx context.Context, m *member.Membership) error {
	query := `
		UPDATE memberships SET
			start_date = $2, end_date = $3, status = $4, cancelled_at = $5, updated_at = $6
		WHERE id = $1
	`
	tag, err := r.executor.Exec(ctx, query,
		m.ID, m.StartDate, m.EndDate, m.Status, m.CancelledAt, m.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update membership")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeMembershipNotFound, "membership "+string(m.ID)+" not found")
	}
	return nil
}

// membershipWhere builds the WHERE clause shared by ListMemberships and
// CountMemberships. Time pairs are half-open windows [from, to).
func membershipWhere(filter member.MembershipFilter) (string, []any) {
	where := []string{"TRUE"}
	args := []any{}

	add := func(cond string, val any) {
		args = append(args, val)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.MemberID != "" {
		add("ms.member_id = $%d", filter.MemberID)
	}
	if filter.Status != "" {
		add("ms.status = $%d", filter.Status)
	}
	if !filter.CreatedFrom.IsZero() {
		add("ms.created_at >= $%d", filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		add("ms.created_at < $%d", filter.CreatedTo)
	}
	if !filter.EndFrom.IsZero() {
		add("ms.end_date >= $%d", filter.EndFrom)
	}
	if !filter.EndTo.IsZero() {
		add("ms.end_date < $%d", filter.EndTo)
	}
	if !filter.CancelledFrom.IsZero() {
		add("ms.cancelled_at >= $%d", filter.CancelledFrom)
	}
	if !filter.CancelledTo.IsZero() {
		add("ms.cancelled_at < $%d", filter.CancelledTo)
	}

	return strings.Join(where, " AND "), args
}

// ─────────────────────────────────────────────────────────────────────────────
// Row scanning
// ─────────────────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*member.Member, error) {
	m := &member.Member{}
	var kioskPIN *string
	err := row.Scan(
		&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Username, &m.Phone, &m.Address,
		&m.Birthdate, &m.Role, &kioskPIN, &m.Active, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan member")
	}
	if kioskPIN != nil {
		m.KioskPIN = *kioskPIN
	}
	return m, nil
}

func scanMembers(rows pgx.Rows) ([]*member.Member, error) {
	defer rows.Close()
	var out []*member.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanPlan(row rowScanner) (*member.Plan, error) {
	p := &member.Plan{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.DurationDays, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan plan")
	}
	return p, nil
}

func scanMembership(row rowScanner) (*member.Membership, error) {
	m := &member.Membership{}
	err := row.Scan(
		&m.ID, &m.MemberID, &m.PlanID, &m.PlanName,
		&m.StartDate, &m.EndDate, &m.Status, &m.CancelledAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan membership")
	}
	return m, nil
}

func scanMemberships(rows pgx.Rows) ([]*member.Membership, error) {
	defer rows.Close()
	var out []*member.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// nullIfEmpty maps "" to NULL so partial unique indexes ignore unset values.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
