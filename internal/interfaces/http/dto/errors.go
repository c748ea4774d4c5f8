package dto

import (
	"errors"
	"net/http"

	appintegration "github.com/erp/shopify-connector/internal/application/integration"
	"github.com/erp/shopify-connector/internal/domain/catalog"
	"github.com/erp/shopify-connector/internal/domain/finance"
	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/domain/partner"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/erp/shopify-connector/internal/domain/trade"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation  = "ERR_VALIDATION"
	ErrCodeBadRequest  = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	ErrCodeInvalidID   = "ERR_INVALID_ID"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeBusinessRule      = "ERR_BUSINESS_RULE"
	ErrCodeDrainInProgress   = "ERR_DRAIN_IN_PROGRESS"
	ErrCodeMalformedPayload  = "ERR_MALFORMED_PAYLOAD"
	ErrCodeRemoteUnavailable = "ERR_REMOTE_UNAVAILABLE"
	ErrCodeRemoteFailed      = "ERR_REMOTE_FAILED"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	ErrCodeInvalidID:   http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:     http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:     http.StatusUnprocessableEntity,
	ErrCodeMalformedPayload: http.StatusUnprocessableEntity,
	ErrCodeDrainInProgress:  http.StatusConflict,

	// Remote platform errors surface as gateway failures
	ErrCodeRemoteUnavailable: http.StatusServiceUnavailable,
	ErrCodeRemoteFailed:      http.StatusBadGateway,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps shared.DomainError codes to API codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS": ErrCodeAlreadyExists,
	"INVALID_INPUT":  ErrCodeValidation,
	"INVALID_STATE":  ErrCodeInvalidState,
	"UNAUTHORIZED":   ErrCodeUnauthorized,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}

// sentinelCodes is checked in order; the first match wins
var sentinelCodes = []struct {
	err  error
	code string
}{
	{integration.ErrConnectionNotFound, ErrCodeNotFound},
	{integration.ErrWebhookNotFound, ErrCodeNotFound},
	{integration.ErrQueueNotFound, ErrCodeNotFound},
	{integration.ErrProcessConfigNotFound, ErrCodeNotFound},
	{integration.ErrPaymentGatewayNotFound, ErrCodeNotFound},
	{integration.ErrWorkflowNotFound, ErrCodeNotFound},
	{partner.ErrCustomerNotFound, ErrCodeNotFound},
	{catalog.ErrProductNotFound, ErrCodeNotFound},
	{trade.ErrOrderNotFound, ErrCodeNotFound},
	{finance.ErrInvoiceNotFound, ErrCodeNotFound},

	{integration.ErrConnectionInvalidName, ErrCodeValidation},
	{integration.ErrConnectionInvalidHost, ErrCodeValidation},
	{integration.ErrConnectionInvalidToken, ErrCodeValidation},
	{integration.ErrWebhookInvalidTopic, ErrCodeValidation},
	{integration.ErrQueueInvalidKind, ErrCodeValidation},
	{integration.ErrPaymentGatewayInvalid, ErrCodeValidation},
	{integration.ErrInvalidDateRange, ErrCodeValidation},
	{integration.ErrWorkflowInvalidName, ErrCodeValidation},
	{integration.ErrFinancialStatusInvalid, ErrCodeValidation},

	{integration.ErrWebhookAlreadyExists, ErrCodeAlreadyExists},
	{shared.ErrDuplicateExternalID, ErrCodeConflict},
	{appintegration.ErrDrainInProgress, ErrCodeDrainInProgress},

	{integration.ErrConnectionNotIntegrated, ErrCodeInvalidState},
	{integration.ErrWorkflowInactive, ErrCodeInvalidState},
	{integration.ErrStockLocationMissing, ErrCodeInvalidState},
	{integration.ErrQueueEmptyPayload, ErrCodeBusinessRule},
	{integration.ErrUnsupportedOperation, ErrCodeBusinessRule},
	{integration.ErrReferenceUnresolvable, ErrCodeBusinessRule},
	{integration.ErrMalformedPayload, ErrCodeMalformedPayload},

	{integration.ErrRemoteUnavailable, ErrCodeRemoteUnavailable},
	{integration.ErrRemoteRequestFailed, ErrCodeRemoteFailed},
	{integration.ErrRemoteInvalidPayload, ErrCodeRemoteFailed},

	{integration.ErrUnauthorizedOrigin, ErrCodeForbidden},
}

// ErrorCodeFor resolves an error to its API code. The boolean is false when
// the error is unknown and should be reported as an internal error.
func ErrorCodeFor(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return NormalizeErrorCode(domainErr.Code), true
	}
	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			return s.code, true
		}
	}
	return ErrCodeInternal, false
}
