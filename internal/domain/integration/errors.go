package integration

import (
	"errors"
	"fmt"
)

var (
	// Inbound errors
	ErrUnauthorizedOrigin    = errors.New("integration: unauthorized origin")
	ErrMalformedPayload      = errors.New("integration: malformed payload")
	ErrReferenceUnresolvable = errors.New("integration: reference unresolvable")
	ErrUnsupportedOperation  = errors.New("integration: unsupported operation for entity kind")

	// Remote errors
	ErrRemoteUnavailable    = errors.New("integration: remote platform unavailable")
	ErrRemoteRequestFailed  = errors.New("integration: remote request failed")
	ErrRemoteInvalidPayload = errors.New("integration: invalid remote response")

	// Connection errors
	ErrConnectionNotFound      = errors.New("integration: connection not found")
	ErrConnectionInvalidName   = errors.New("integration: connection name is required")
	ErrConnectionInvalidHost   = errors.New("integration: connection host is required")
	ErrConnectionInvalidToken  = errors.New("integration: connection access token is required")
	ErrConnectionNotIntegrated = errors.New("integration: connection is not integrated")

	// Webhook errors
	ErrWebhookNotFound      = errors.New("integration: webhook registration not found")
	ErrWebhookAlreadyExists = errors.New("integration: webhook already registered for topic")
	ErrWebhookInvalidTopic  = errors.New("integration: invalid webhook topic")

	// Queue errors
	ErrQueueNotFound     = errors.New("integration: queue not found")
	ErrQueueEmptyPayload = errors.New("integration: nothing to enqueue")
	ErrQueueInvalidKind  = errors.New("integration: invalid entity kind")

	// Configuration errors
	ErrProcessConfigNotFound  = errors.New("integration: order process configuration not found")
	ErrWorkflowNotFound       = errors.New("integration: automation workflow not found")
	ErrWorkflowInvalidName    = errors.New("integration: automation workflow name is required")
	ErrWorkflowInactive       = errors.New("integration: automation workflow is inactive")
	ErrFinancialStatusInvalid = errors.New("integration: invalid financial status")
	ErrStockLocationMissing   = errors.New("integration: connection has no stock location")
	ErrPaymentGatewayNotFound = errors.New("integration: payment gateway not found")
	ErrPaymentGatewayInvalid  = errors.New("integration: payment gateway code is required")
	ErrInvalidDateRange       = errors.New("integration: from date must not be after to date")
)

// RemoteStatusError carries the HTTP status of a failed remote call. It
// unwraps to ErrRemoteRequestFailed.
type RemoteStatusError struct {
	StatusCode int
	Body       string
}

func (e *RemoteStatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", ErrRemoteRequestFailed.Error(), e.StatusCode, e.Body)
}

func (e *RemoteStatusError) Unwrap() error {
	return ErrRemoteRequestFailed
}
