package dto

import (
	"strings"
	"time"

	appintegration "github.com/erp/shopify-connector/internal/application/integration"
)

// IDRequest represents a request with an ID path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ImportIDsRequest restricts an import to explicit remote ids. An empty list
// imports everything the list endpoint returns.
type ImportIDsRequest struct {
	IDs []string `json:"ids" binding:"omitempty,max=250,dive,required,numeric"`
}

// DateWindowRequest bounds an import by remote creation time
type DateWindowRequest struct {
	From time.Time `json:"from" binding:"required"`
	To   time.Time `json:"to" binding:"required"`
}

// OrderImportRequest selects remote orders by fulfillment mode and window,
// or by explicit ids
type OrderImportRequest struct {
	Mode string     `json:"mode" binding:"omitempty,oneof=unshipped shipped all"`
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
	IDs  []string   `json:"ids" binding:"omitempty,max=250,dive,required,numeric"`
}

// ToApp converts the request for the import service. Mode defaults to
// unshipped; a missing window ends now and starts one day earlier.
func (r OrderImportRequest) ToApp(now time.Time) appintegration.OrderImportRequest {
	req := appintegration.OrderImportRequest{
		Mode: appintegration.OrderImportMode(strings.ToLower(r.Mode)),
		IDs:  r.IDs,
	}
	if req.Mode == "" {
		req.Mode = appintegration.OrderImportUnshipped
	}
	req.To = now
	if r.To != nil {
		req.To = *r.To
	}
	req.From = req.To.Add(-24 * time.Hour)
	if r.From != nil {
		req.From = *r.From
	}
	return req
}

// RegisterWebhookRequest names the topic to subscribe on the remote store
type RegisterWebhookRequest struct {
	Topic string `json:"topic" binding:"required"`
}
