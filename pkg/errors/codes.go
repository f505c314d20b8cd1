package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_015"

	ErrCodeOK      ErrorCode = "OK"
	ErrCodeUnknown ErrorCode = "UNKNOWN"
)

// Chat pipeline error codes
const (
	ErrCodeConversationNotFound ErrorCode = "CHAT_001"
	ErrCodeEmptyQuery           ErrorCode = "CHAT_002"
	ErrCodeGenerationFailed     ErrorCode = "CHAT_003"
	ErrCodeToolDispatchFailed   ErrorCode = "CHAT_004"
)

// FAQ corpus error codes
const (
	ErrCodeCorpusDuplicateKey  ErrorCode = "FAQ_001"
	ErrCodeCorpusEmptyKeywords ErrorCode = "FAQ_002"
	ErrCodeCorpusLoadFailed    ErrorCode = "FAQ_003"
)

// Member module error codes
const (
	ErrCodeMemberNotFound       ErrorCode = "MEM_001"
	ErrCodeMembershipNotFound   ErrorCode = "MEM_002"
	ErrCodeMemberDuplicateEmail ErrorCode = "MEM_003"
	ErrCodeMemberCodeInvalid    ErrorCode = "MEM_004"
)

// Payment module error codes
const (
	ErrCodePaymentNotFound         ErrorCode = "PAY_001"
	ErrCodePaymentNotPending       ErrorCode = "PAY_002"
	ErrCodePaymentReferenceInvalid ErrorCode = "PAY_003"
)

// Operations module error codes
const (
	ErrCodePermissionDenied    ErrorCode = "OPS_001"
	ErrCodeAuditWriteFailed    ErrorCode = "OPS_002"
	ErrCodePinGenerationFailed ErrorCode = "OPS_003"
)

// Analytics module error codes
const (
	ErrCodeReportFailed  ErrorCode = "ANA_001"
	ErrCodePeriodInvalid ErrorCode = "ANA_002"
)

// Generative backend error codes
const (
	ErrCodeProviderUnavailable ErrorCode = "GEN_001"
	ErrCodeEmbeddingFailed     ErrorCode = "GEN_002"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeConversationNotFound: http.StatusNotFound,
	ErrCodeEmptyQuery:           http.StatusBadRequest,
	ErrCodeGenerationFailed:     http.StatusBadGateway,
	ErrCodeToolDispatchFailed:   http.StatusInternalServerError,

	ErrCodeCorpusDuplicateKey:  http.StatusInternalServerError,
	ErrCodeCorpusEmptyKeywords: http.StatusInternalServerError,
	ErrCodeCorpusLoadFailed:    http.StatusInternalServerError,

	ErrCodeMemberNotFound:       http.StatusNotFound,
	ErrCodeMembershipNotFound:   http.StatusNotFound,
	ErrCodeMemberDuplicateEmail: http.StatusConflict,
	ErrCodeMemberCodeInvalid:    http.StatusBadRequest,

	ErrCodePaymentNotFound:         http.StatusNotFound,
	ErrCodePaymentNotPending:       http.StatusConflict,
	ErrCodePaymentReferenceInvalid: http.StatusBadRequest,

	ErrCodePermissionDenied:    http.StatusForbidden,
	ErrCodeAuditWriteFailed:    http.StatusInternalServerError,
	ErrCodePinGenerationFailed: http.StatusInternalServerError,

	ErrCodeReportFailed:  http.StatusInternalServerError,
	ErrCodePeriodInvalid: http.StatusBadRequest,

	ErrCodeProviderUnavailable: http.StatusServiceUnavailable,
	ErrCodeEmbeddingFailed:     http.StatusBadGateway,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeConversationNotFound: "conversation not found",
	ErrCodeEmptyQuery:           "query must not be empty",
	ErrCodeGenerationFailed:     "answer generation failed",
	ErrCodeToolDispatchFailed:   "tool dispatch failed",

	ErrCodeCorpusDuplicateKey:  "duplicate FAQ topic key",
	ErrCodeCorpusEmptyKeywords: "FAQ entry has no keywords",
	ErrCodeCorpusLoadFailed:    "failed to load FAQ corpus",

	ErrCodeMemberNotFound:       "member not found",
	ErrCodeMembershipNotFound:   "membership not found",
	ErrCodeMemberDuplicateEmail: "email already registered",
	ErrCodeMemberCodeInvalid:    "invalid member code",

	ErrCodePaymentNotFound:         "payment not found",
	ErrCodePaymentNotPending:       "payment is not pending",
	ErrCodePaymentReferenceInvalid: "invalid payment reference",

	ErrCodePermissionDenied:    "you do not have permission for this operation",
	ErrCodeAuditWriteFailed:    "failed to record audit entry",
	ErrCodePinGenerationFailed: "failed to generate kiosk PIN",

	ErrCodeReportFailed:  "report generation failed",
	ErrCodePeriodInvalid: "invalid report period",

	ErrCodeProviderUnavailable: "generative backend unavailable",
	ErrCodeEmbeddingFailed:     "text embedding failed",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
