// Package integration contains the Integration bounded context.
// This context keeps local records consistent with a remote Shopify store.
//
// Key concepts:
//   - Connection: a configured link to one remote store (credentials, API version, defaults)
//   - WebhookRegistration: a remote webhook subscription owned by a Connection
//   - EntityKind / Operation: tagged enums used to dispatch payloads to mappers
//   - Queue / QueueLine: durable batches of deferred payloads with derived state
//   - OrderProcessConfig / AutomationWorkflow: per (financial status, gateway) order automation policy
//   - ProcessLog: append-only audit trail of every sync attempt
//
// Design Pattern: Ports & Adapters
//   - Ports (RemoteClient, repositories, ImageStore) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
