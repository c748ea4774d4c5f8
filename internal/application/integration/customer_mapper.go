package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/domain/partner"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerMapper upserts remote customers onto local customers
type CustomerMapper struct {
	customers partner.CustomerRepository
	countries partner.CountryRepository
	auditor   *Auditor
	metrics   SyncMetrics
	logger    *zap.Logger
}

// NewCustomerMapper creates a new CustomerMapper
func NewCustomerMapper(
	customers partner.CustomerRepository,
	countries partner.CountryRepository,
	auditor *Auditor,
	metrics SyncMetrics,
	logger *zap.Logger,
) *CustomerMapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerMapper{
		customers: customers,
		countries: countries,
		auditor:   auditor,
		metrics:   metricsOrNop(metrics),
		logger:    logger,
	}
}

// Upsert creates or updates the local customer for a remote customer
func (m *CustomerMapper) Upsert(ctx context.Context, conn *integration.Connection, p *integration.CustomerPayload) (*partner.Customer, error) {
	start := time.Now()
	defer func() { m.metrics.UpsertDuration(integration.EntityKindCustomer.String(), time.Since(start)) }()

	if p == nil || p.ID.IsZero() {
		err := fmt.Errorf("%w: customer id missing", integration.ErrMalformedPayload)
		m.auditor.Failure(ctx, conn.ID, integration.ResourceCustomer, "", "Customer payload has no id", "", err)
		return nil, err
	}
	resourceID := p.ID.String()
	profile := m.buildProfile(ctx, p)

	customer, created, err := m.apply(ctx, conn, p.ID, profile)
	if err != nil {
		m.logger.Error("Failed to upsert customer",
			zap.String("connection_id", conn.ID.String()),
			zap.String("external_id", resourceID),
			zap.Error(err))
		m.auditor.Failure(ctx, conn.ID, integration.ResourceCustomer, resourceID,
			"Failed to import customer "+profile.Name, responseText(p), err)
		return nil, err
	}

	message := "Customer updated: " + customer.Name
	if created {
		message = "Customer created: " + customer.Name
	}
	log := integration.NewProcessLog(conn.ID, integration.ResourceCustomer, resourceID, message, responseText(p))
	log.AddSuccess(customer.Name, resourceID, message, "")
	m.auditor.Record(ctx, log)
	return customer, nil
}

func (m *CustomerMapper) apply(ctx context.Context, conn *integration.Connection, externalID shared.ExternalID, profile partner.CustomerProfile) (*partner.Customer, bool, error) {
	existing, err := m.customers.FindByExternalID(ctx, conn.ID, externalID)
	switch {
	case err == nil:
		existing.Apply(profile)
		return existing, false, m.customers.Save(ctx, existing)
	case !errors.Is(err, partner.ErrCustomerNotFound):
		return nil, false, err
	}

	customer, err := partner.NewCustomer(conn.ID, conn.CompanyID, externalID, profile)
	if err != nil {
		return nil, false, err
	}
	err = m.customers.Create(ctx, customer)
	if errors.Is(err, shared.ErrDuplicateExternalID) {
		// Lost a create race with a concurrent delivery: update the winner
		winner, findErr := m.customers.FindByExternalID(ctx, conn.ID, externalID)
		if findErr != nil {
			return nil, false, findErr
		}
		winner.Apply(profile)
		return winner, false, m.customers.Save(ctx, winner)
	}
	if err != nil {
		return nil, false, err
	}
	return customer, true, nil
}

// buildProfile maps payload fields. Country and state are matched exactly;
// anything unresolved is left empty.
func (m *CustomerMapper) buildProfile(ctx context.Context, p *integration.CustomerPayload) partner.CustomerProfile {
	profile := partner.CustomerProfile{
		Name:  p.DisplayName(),
		Email: p.Email,
		Phone: p.Phone,
	}
	addr := p.DefaultAddress
	if addr == nil {
		return profile
	}
	profile.Street = addr.Address1
	profile.Street2 = addr.Address2
	profile.City = addr.City
	profile.Zip = addr.Zip

	code := strings.TrimSpace(addr.CountryCode)
	if code == "" || m.countries == nil {
		return profile
	}
	country, err := m.countries.FindByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, partner.ErrCountryNotFound) {
			m.logger.Warn("Failed to look up country", zap.String("country_code", code), zap.Error(err))
		}
		return profile
	}
	profile.CountryID = &country.ID

	province := strings.TrimSpace(addr.Province)
	if province == "" {
		return profile
	}
	state, err := m.countries.FindState(ctx, country.ID, province)
	if err != nil {
		if !errors.Is(err, partner.ErrCountryStateNotFound) {
			m.logger.Warn("Failed to look up country state", zap.String("province", province), zap.Error(err))
		}
		return profile
	}
	profile.StateID = &state.ID
	return profile
}

// Archive soft-deletes the customer with a remote id. Returns false when no
// active customer has that id.
func (m *CustomerMapper) Archive(ctx context.Context, conn *integration.Connection, externalID shared.ExternalID) (bool, error) {
	customer, err := m.customers.FindByExternalID(ctx, conn.ID, externalID)
	if errors.Is(err, partner.ErrCustomerNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	customer.Archive()
	if err := m.customers.Save(ctx, customer); err != nil {
		m.auditor.Failure(ctx, conn.ID, integration.ResourceCustomer, externalID.String(), "Failed to archive customer", "", err)
		return false, err
	}
	log := integration.NewProcessLog(conn.ID, integration.ResourceCustomer, externalID.String(), "Customer archived: "+customer.Name, "")
	m.auditor.Record(ctx, log)
	return true, nil
}
