package integration

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/erp/shopify-connector/internal/domain/integration"
)

// EntityHandler applies one kind of remote payload
type EntityHandler interface {
	Kind() integration.EntityKind
	Handle(ctx context.Context, conn *integration.Connection, op integration.Operation, raw json.RawMessage) error
}

// Dispatcher routes payloads to the handler registered for their kind
type Dispatcher struct {
	handlers map[integration.EntityKind]EntityHandler
}

// NewDispatcher creates a dispatcher over a set of handlers; a later handler
// for the same kind replaces an earlier one
func NewDispatcher(handlers ...EntityHandler) *Dispatcher {
	d := &Dispatcher{handlers: make(map[integration.EntityKind]EntityHandler, len(handlers))}
	for _, h := range handlers {
		d.handlers[h.Kind()] = h
	}
	return d
}

// Dispatch hands raw to the kind's handler
func (d *Dispatcher) Dispatch(ctx context.Context, conn *integration.Connection, kind integration.EntityKind, op integration.Operation, raw json.RawMessage) error {
	h, ok := d.handlers[kind]
	if !ok {
		return fmt.Errorf("%w: %s", integration.ErrQueueInvalidKind, kind)
	}
	if !op.IsValid() {
		return fmt.Errorf("%w: %s", integration.ErrUnsupportedOperation, op)
	}
	return h.Handle(ctx, conn, op, raw)
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

type customerHandler struct{ mapper *CustomerMapper }

// NewCustomerHandler adapts a CustomerMapper to EntityHandler
func NewCustomerHandler(m *CustomerMapper) EntityHandler { return customerHandler{mapper: m} }

func (customerHandler) Kind() integration.EntityKind { return integration.EntityKindCustomer }

func (h customerHandler) Handle(ctx context.Context, conn *integration.Connection, op integration.Operation, raw json.RawMessage) error {
	if op == integration.OperationDelete {
		p, err := integration.DecodeDelete(raw)
		if err != nil {
			return err
		}
		_, err = h.mapper.Archive(ctx, conn, p.ID)
		return err
	}
	p, err := integration.DecodeCustomer(raw)
	if err != nil {
		return err
	}
	_, err = h.mapper.Upsert(ctx, conn, p)
	return err
}

type productHandler struct{ mapper *ProductMapper }

// NewProductHandler adapts a ProductMapper to EntityHandler
func NewProductHandler(m *ProductMapper) EntityHandler { return productHandler{mapper: m} }

func (productHandler) Kind() integration.EntityKind { return integration.EntityKindProduct }

func (h productHandler) Handle(ctx context.Context, conn *integration.Connection, op integration.Operation, raw json.RawMessage) error {
	if op == integration.OperationDelete {
		p, err := integration.DecodeDelete(raw)
		if err != nil {
			return err
		}
		_, err = h.mapper.Archive(ctx, conn, p.ID)
		return err
	}
	p, err := integration.DecodeProduct(raw)
	if err != nil {
		return err
	}
	_, err = h.mapper.Upsert(ctx, conn, p)
	return err
}

type orderHandler struct{ mapper *OrderMapper }

// NewOrderHandler adapts an OrderMapper to EntityHandler. Orders cannot be deleted.
func NewOrderHandler(m *OrderMapper) EntityHandler { return orderHandler{mapper: m} }

func (orderHandler) Kind() integration.EntityKind { return integration.EntityKindOrder }

// Handle reports an upsert failure only; automation step failures are audited
// on the order and do not fail the payload.
func (h orderHandler) Handle(ctx context.Context, conn *integration.Connection, op integration.Operation, raw json.RawMessage) error {
	if op == integration.OperationDelete {
		return fmt.Errorf("%w: order delete", integration.ErrUnsupportedOperation)
	}
	p, err := integration.DecodeOrder(raw)
	if err != nil {
		return err
	}
	_, _, err = h.mapper.Upsert(ctx, conn, p)
	return err
}
