package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/audit"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

type postgresAuditRepo struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

func NewPostgresAuditRepo(conn *postgres.Connection, log logging.Logger) audit.AuditRepository {
	return &postgresAuditRepo{
		conn:     conn,
		log:      log,
		executor: conn.Pool(),
	}
}

func (r *postgresAuditRepo) Append(ctx context.Context, e *audit.Entry) error {
	query := `
		INSERT INTO audit_log (id, actor_id, actor_name, actor_role, action, description, severity, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.executor.Exec(ctx, query,
		e.ID, e.ActorID, e.ActorName, e.ActorRole, e.Action, e.Description,
		e.Severity, e.Metadata, e.CreatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to append audit entry")
	}
	return nil
}

func (r *postgresAuditRepo) List(ctx context.Context, filter audit.ListFilter) ([]*audit.Entry, int64, error) {
	where := []string{"TRUE"}
	args := []any{}

	add := func(cond string, val any) {
		args = append(args, val)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.ActorID != "" {
		add("actor_id = $%d", filter.ActorID)
	}
	if filter.Action != "" {
		add("action = $%d", filter.Action)
	}
	if filter.Severity != "" {
		add("severity = $%d", filter.Severity)
	}
	if !filter.From.IsZero() {
		add("created_at >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("created_at < $%d", filter.To)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.executor.QueryRow(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count audit entries")
	}

	limit, offset := pageWindow(filter.Pagination)
	args = append(args, limit, offset)
	rows, err := r.executor.Query(ctx, fmt.Sprintf(`
		SELECT id, actor_id, actor_name, actor_role, action, description, severity, metadata, created_at
		FROM audit_log
		WHERE %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d
	`, cond, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list audit entries")
	}
	defer rows.Close()

	var out []*audit.Entry
	for rows.Next() {
		e := &audit.Entry{}
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorName, &e.ActorRole, &e.Action,
			&e.Description, &e.Severity, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan audit entry")
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}
