package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/attendance"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// checkinColumns joins members so MemberName is populated on load.
const checkinColumns = `c.id, c.member_id, m.name, c.check_in, c.check_out, c.created_at, c.updated_at`

const checkinJoin = `checkins c JOIN members m ON m.id = c.member_id`

type postgresAttendanceRepo struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

func NewPostgresAttendanceRepo(conn *postgres.Connection, log logging.Logger) attendance.AttendanceRepository {
	return &postgresAttendanceRepo{
		conn:     conn,
		log:      log,
		executor: conn.Pool(),
	}
}

func (r *postgresAttendanceRepo) Create(ctx context.Context, c *attendance.Checkin) error {
	query := `
		INSERT INTO checkins (id, member_id, check_in, check_out, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.executor.Exec(ctx, query,
		c.ID, c.MemberID, c.CheckIn, c.CheckOut, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create checkin")
	}
	return nil
}

func (r *postgresAttendanceRepo) OpenByMember(ctx context.Context, memberID common.ID) (*attendance.Checkin, error) {
	row := r.executor.QueryRow(ctx, `
		SELECT `+checkinColumns+` FROM `+checkinJoin+`
		WHERE c.member_id = $1 AND c.check_out IS NULL
		ORDER BY c.check_in DESC
		LIMIT 1
	`, memberID)
	c, err := scanCheckin(row)
	if isNoRows(err) {
		return nil, errors.NotFound("member " + string(memberID) + " is not checked in")
	}
	return c, err
}

func (r *postgresAttendanceRepo) Update(ctx context.Context, c *attendance.Checkin) error {
	query := `
		UPDATE checkins SET check_out = $2, updated_at = $3 WHERE id = $1
	`
	tag, err := r.executor.Exec(ctx, query, c.ID, c.CheckOut, c.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update checkin")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("checkin " + string(c.ID) + " not found")
	}
	return nil
}

func (r *postgresAttendanceRepo) ListByRange(ctx context.Context, from, to time.Time) ([]*attendance.Checkin, error) {
	rows, err := r.executor.Query(ctx, `
		SELECT `+checkinColumns+` FROM `+checkinJoin+`
		WHERE c.check_in >= $1 AND c.check_in < $2
		ORDER BY c.check_in, c.id
	`, from, to)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list checkins")
	}
	return scanCheckins(rows)
}

func (r *postgresAttendanceRepo) ListByMemberSince(ctx context.Context, memberID common.ID, since time.Time) ([]*attendance.Checkin, error) {
	rows, err := r.executor.Query(ctx, `
		SELECT `+checkinColumns+` FROM `+checkinJoin+`
		WHERE c.member_id = $1 AND c.check_in >= $2
		ORDER BY c.check_in DESC, c.id
	`, memberID, since)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list member checkins")
	}
	return scanCheckins(rows)
}

func (r *postgresAttendanceRepo) CountByMemberSince(ctx context.Context, memberID common.ID, since time.Time) (int64, error) {
	var n int64
	err := r.executor.QueryRow(ctx,
		`SELECT COUNT(*) FROM checkins WHERE member_id = $1 AND check_in >= $2`,
		memberID, since).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count member checkins")
	}
	return n, nil
}

func (r *postgresAttendanceRepo) LastByMember(ctx context.Context, memberID common.ID) (*attendance.Checkin, error) {
	row := r.executor.QueryRow(ctx, `
		SELECT `+checkinColumns+` FROM `+checkinJoin+`
		WHERE c.member_id = $1
		ORDER BY c.check_in DESC
		LIMIT 1
	`, memberID)
	c, err := scanCheckin(row)
	if isNoRows(err) {
		return nil, errors.NotFound("member " + string(memberID) + " has never checked in")
	}
	return c, err
}

func (r *postgresAttendanceRepo) CountOpen(ctx context.Context) (int64, error) {
	var n int64
	err := r.executor.QueryRow(ctx,
		`SELECT COUNT(*) FROM checkins WHERE check_out IS NULL`).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count open checkins")
	}
	return n, nil
}

func scanCheckin(row rowScanner) (*attendance.Checkin, error) {
	c := &attendance.Checkin{}
	err := row.Scan(&c.ID, &c.MemberID, &c.MemberName, &c.CheckIn, &c.CheckOut,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan checkin")
	}
	return c, nil
}

func scanCheckins(rows pgx.Rows) ([]*attendance.Checkin, error) {
	defer rows.Close()
	var out []*attendance.Checkin
	for rows.Next() {
		c, err := scanCheckin(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
