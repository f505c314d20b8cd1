// Package errors_test provides unit tests for the AppError type, factory
// functions, and error-chain helpers defined in pkg/errors.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New / Newf
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.ErrCodeInternal, "unexpected failure"},
		{"member not found", errors.ErrCodeMemberNotFound, "member GX-0042 not found"},
		{"bad request", errors.ErrCodeBadRequest, "query must not be empty"},
		{"rate limit", errors.ErrCodeTooManyRequests, "too many requests"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail, "Detail should be empty for bare New()")
			assert.Nil(t, ae.Cause, "Cause should be nil for bare New()")
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.ErrCodePaymentNotFound, "payment %s not found", "PAY-20260101-000001")
	require.NotNil(t, ae)
	assert.Equal(t, "payment PAY-20260101-000001 not found", ae.Message)
}

// ─────────────────────────────────────────────────────────────────────────────
// Wrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	result := errors.Wrap(nil, errors.ErrCodeInternal, "should not matter")
	assert.Nil(t, result)
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := fmt.Errorf("connection refused")
	wrapped := errors.Wrap(root, errors.ErrCodeDatabaseError, "query failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.ErrCodeDatabaseError, wrapped.Code)
	assert.True(t, stderrors.Is(wrapped, root), "errors.Is must traverse the chain")
}

func TestWrap_UnknownCodePreservesOriginal(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeMemberNotFound, "member missing")
	outer := errors.Wrap(inner, errors.ErrCodeUnknown, "while handling chat query")

	require.NotNil(t, outer)
	assert.Equal(t, errors.ErrCodeMemberNotFound, outer.Code,
		"wrapping with ErrCodeUnknown must keep the inner classification")
}

// ─────────────────────────────────────────────────────────────────────────────
// Error() formatting and builders
// ─────────────────────────────────────────────────────────────────────────────

func TestError_FormatWithAndWithoutDetail(t *testing.T) {
	t.Parallel()

	bare := errors.New(errors.ErrCodeNotFound, "resource missing")
	assert.Equal(t, "[COMMON_005] resource missing", bare.Error())

	detailed := bare.WithDetail("id=42")
	assert.Equal(t, "[COMMON_005] resource missing: id=42", detailed.Error())
	assert.Empty(t, bare.Detail, "WithDetail must not mutate the receiver")
}

func TestWithDetail_NilReceiver(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("anything"))
	assert.Nil(t, ae.WithCause(fmt.Errorf("x")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_FindsCodeThroughChain(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodePaymentNotPending, "already confirmed")
	outer := errors.Wrap(inner, errors.ErrCodeToolDispatchFailed, "confirm payment failed")
	wrapped := fmt.Errorf("handler: %w", outer)

	assert.True(t, errors.IsCode(wrapped, errors.ErrCodePaymentNotPending))
	assert.True(t, errors.IsCode(wrapped, errors.ErrCodeToolDispatchFailed))
	assert.False(t, errors.IsCode(wrapped, errors.ErrCodeMemberNotFound))
}

func TestCategoryHelpers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"generic not found", errors.NotFound("missing"), errors.IsNotFound, true},
		{"member not found", errors.New(errors.ErrCodeMemberNotFound, "x"), errors.IsNotFound, true},
		{"conversation not found", errors.New(errors.ErrCodeConversationNotFound, "x"), errors.IsNotFound, true},
		{"validation", errors.Validation("bad corpus"), errors.IsValidation, true},
		{"invalid param", errors.InvalidParam("empty"), errors.IsValidation, true},
		{"conflict", errors.Conflict("duplicate"), errors.IsConflict, true},
		{"payment not pending", errors.New(errors.ErrCodePaymentNotPending, "x"), errors.IsConflict, true},
		{"unauthorized", errors.Unauthorized("no token"), errors.IsUnauthorized, true},
		{"forbidden", errors.Forbidden("nope"), errors.IsForbidden, true},
		{"permission denied", errors.PermissionDenied("staff only"), errors.IsForbidden, true},
		{"not found is not forbidden", errors.NotFound("missing"), errors.IsForbidden, false},
		{"plain error", fmt.Errorf("plain"), errors.IsNotFound, false},
		{"nil error", nil, errors.IsNotFound, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.check(tc.err))
		})
	}
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.ErrCodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.ErrCodeUnknown, errors.GetCode(fmt.Errorf("plain")))

	ae := errors.New(errors.ErrCodeCorpusDuplicateKey, "dup")
	assert.Equal(t, errors.ErrCodeCorpusDuplicateKey, errors.GetCode(fmt.Errorf("load: %w", ae)))
}

func TestStackContainsThisFile(t *testing.T) {
	t.Parallel()

	ae := errors.Internal("boom")
	require.NotNil(t, ae)
	assert.True(t, strings.Contains(ae.Stack, "errors_test.go"),
		"stack should include the creating frame")
}
