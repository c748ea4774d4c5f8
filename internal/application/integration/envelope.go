package integration

import (
	"encoding/json"
	"fmt"

	"github.com/erp/shopify-connector/internal/domain/integration"
)

// envelope is a decoded remote response body such as {"customer": {...}} or
// {"customers": [...]}
type envelope struct {
	single json.RawMessage
	list   []json.RawMessage
	isList bool
}

// decodeEnvelope picks the kind's singular or plural key out of a response body.
// The singular key wins when both are present.
func decodeEnvelope(kind integration.EntityKind, body []byte) (*envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrRemoteInvalidPayload, err)
	}
	if raw, ok := fields[kind.SingularKey()]; ok && !isJSONNull(raw) {
		return &envelope{single: raw}, nil
	}
	if raw, ok := fields[kind.PluralKey()]; ok {
		var items []json.RawMessage
		if !isJSONNull(raw) {
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, fmt.Errorf("%w: %s is not a list: %v", integration.ErrRemoteInvalidPayload, kind.PluralKey(), err)
			}
		}
		return &envelope{list: items, isList: true}, nil
	}
	return nil, fmt.Errorf("%w: neither %q nor %q in response", integration.ErrRemoteInvalidPayload, kind.SingularKey(), kind.PluralKey())
}

func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
