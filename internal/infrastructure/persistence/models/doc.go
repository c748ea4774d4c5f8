// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel and ExternalModel (connection + remote id columns)
// - integration.go: connections, webhooks, queues, process logs, gateways, automation
// - partner.go: customers and reference geography
// - catalog.go: product templates, variants, attributes, categories
// - trade.go: sales orders, lines, taxes, deliveries
// - finance.go: invoices and payments
package models
