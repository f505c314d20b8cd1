package repositories

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name       string
		pagination common.Pagination
		limit      int
		offset     int
	}{
		{"defaults", common.Pagination{}, 20, 0},
		{"first page", common.Pagination{Page: 1, PageSize: 10}, 10, 0},
		{"third page", common.Pagination{Page: 3, PageSize: 25}, 25, 50},
		{"negative page clamps", common.Pagination{Page: -2, PageSize: 5}, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := pageWindow(tt.pagination)
			assert.Equal(t, tt.limit, limit)
			assert.Equal(t, tt.offset, offset)
		})
	}
}

func TestUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "members_email_key"}
	assert.Equal(t, "members_email_key", uniqueViolation(pgErr))
	assert.Equal(t, "members_email_key", uniqueViolation(fmt.Errorf("insert: %w", pgErr)))

	assert.Empty(t, uniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.Empty(t, uniqueViolation(fmt.Errorf("plain error")))
	assert.Empty(t, uniqueViolation(nil))
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, isNoRows(pgx.ErrNoRows))
	assert.True(t, isNoRows(fmt.Errorf("query: %w", pgx.ErrNoRows)))
	assert.False(t, isNoRows(fmt.Errorf("boom")))
	assert.False(t, isNoRows(nil))
}
