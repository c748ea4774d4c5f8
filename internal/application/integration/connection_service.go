package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConnectionService manages connections and their lifecycle
type ConnectionService struct {
	connections integration.ConnectionRepository
	gateways    integration.PaymentGatewayRepository
	remote      integration.RemoteClient
	auditor     *Auditor
	logger      *zap.Logger
	apiVersion  string
}

// NewConnectionService creates a new ConnectionService
func NewConnectionService(
	connections integration.ConnectionRepository,
	gateways integration.PaymentGatewayRepository,
	remote integration.RemoteClient,
	auditor *Auditor,
	logger *zap.Logger,
) *ConnectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionService{
		connections: connections,
		gateways:    gateways,
		remote:      remote,
		auditor:     auditor,
		logger:      logger,
		apiVersion:  integration.DefaultAPIVersion,
	}
}

// WithDefaultAPIVersion sets the Admin API version given to connections
// created without one
func (s *ConnectionService) WithDefaultAPIVersion(version string) *ConnectionService {
	if v := strings.TrimSpace(version); v != "" {
		s.apiVersion = v
	}
	return s
}

// Create stores a new draft connection
func (s *ConnectionService) Create(ctx context.Context, req CreateConnectionRequest) (*ConnectionResponse, error) {
	conn, err := integration.NewConnection(req.Name, req.Host, req.AccessToken, req.CompanyID)
	if err != nil {
		return nil, err
	}
	conn.APIKey = strings.TrimSpace(req.APIKey)
	conn.APISecret = req.APISecret
	conn.APIVersion = s.apiVersion
	if v := strings.TrimSpace(req.APIVersion); v != "" {
		conn.APIVersion = v
	}
	conn.WarehouseID = req.WarehouseID
	conn.LocationID = req.LocationID

	if err := s.connections.Save(ctx, conn); err != nil {
		return nil, err
	}
	s.logger.Info("Connection created",
		zap.String("connection_id", conn.ID.String()),
		zap.String("host", conn.Host))
	resp := ToConnectionResponse(conn)
	return &resp, nil
}

// Get returns a connection
func (s *ConnectionService) Get(ctx context.Context, id uuid.UUID) (*integration.Connection, error) {
	return s.connections.FindByID(ctx, id)
}

// List returns every connection
func (s *ConnectionService) List(ctx context.Context) ([]ConnectionResponse, error) {
	conns, err := s.connections.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ConnectionResponse, len(conns))
	for i, c := range conns {
		out[i] = ToConnectionResponse(c)
	}
	return out, nil
}

// shopResponse is the subset of shop.json read by a connection test
type shopResponse struct {
	Shop struct {
		IanaTimezone      string            `json:"iana_timezone"`
		Currency          string            `json:"currency"`
		PrimaryLocationID shared.ExternalID `json:"primary_location_id"`
	} `json:"shop"`
}

// Test checks the credentials against shop.json. Success marks the connection
// integrated and synchronises payment gateways; a remote failure marks it
// errored. Both outcomes are reported in the result; the returned error is
// reserved for local failures.
func (s *ConnectionService) Test(ctx context.Context, id uuid.UUID) (*ConnectionTestResult, error) {
	conn, err := s.connections.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp, err := s.remote.Fetch(ctx, conn, "shop", nil)
	var shop shopResponse
	if err == nil {
		if jsonErr := json.Unmarshal(resp.Body, &shop); jsonErr != nil {
			err = fmt.Errorf("%w: %v", integration.ErrRemoteInvalidPayload, jsonErr)
		}
	}
	if err != nil {
		return s.testFailed(ctx, conn, err)
	}

	conn.MarkIntegrated(shop.Shop.IanaTimezone, shop.Shop.Currency, shop.Shop.PrimaryLocationID)
	if err := s.connections.Save(ctx, conn); err != nil {
		return nil, err
	}
	s.logger.Info("Connection integrated",
		zap.String("connection_id", conn.ID.String()),
		zap.String("time_zone", conn.TimeZone),
		zap.String("currency", conn.CurrencyCode))

	result := &ConnectionTestResult{Success: true, Message: "Connection successful"}
	filters := url.Values{
		"status": {"any"},
		"fields": {"payment_gateway_names"},
		"limit":  {importPageLimit},
	}
	gws, err := syncPaymentGateways(ctx, s.remote, s.gateways, s.auditor, conn, filters)
	if err != nil {
		s.logger.Warn("Failed to synchronise payment gateways",
			zap.String("connection_id", conn.ID.String()),
			zap.Error(err))
	} else {
		result.GatewaysCreated = gws.Created
	}
	result.Connection = ToConnectionResponse(conn)
	return result, nil
}

func (s *ConnectionService) testFailed(ctx context.Context, conn *integration.Connection, cause error) (*ConnectionTestResult, error) {
	conn.MarkError(cause.Error())
	if err := s.connections.Save(ctx, conn); err != nil {
		return nil, err
	}
	s.logger.Warn("Connection test failed",
		zap.String("connection_id", conn.ID.String()),
		zap.Error(cause))
	s.auditor.Failure(ctx, conn.ID, integration.ResourceConnection, conn.ID.String(),
		"Connection test failed", "", cause)
	return &ConnectionTestResult{
		Connection: ToConnectionResponse(conn),
		Success:    false,
		Message:    cause.Error(),
	}, nil
}

// ResetToDraft moves a connection back to draft
func (s *ConnectionService) ResetToDraft(ctx context.Context, id uuid.UUID) (*ConnectionResponse, error) {
	conn, err := s.connections.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	conn.ResetToDraft()
	if err := s.connections.Save(ctx, conn); err != nil {
		return nil, err
	}
	resp := ToConnectionResponse(conn)
	return &resp, nil
}
