package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ExternalID is the remote platform's identifier for an entity. Shopify sends
// them as JSON numbers, but some endpoints and stored documents carry strings,
// so both forms decode into the same canonical decimal string.
type ExternalID string

// ParseExternalID parses a decimal id string
func ParseExternalID(s string) (ExternalID, error) {
	if s == "" {
		return "", fmt.Errorf("shared: empty external id")
	}
	if _, err := strconv.ParseUint(s, 10, 64); err != nil {
		return "", fmt.Errorf("shared: invalid external id %q", s)
	}
	return ExternalID(s), nil
}

// ExternalIDFromInt converts a numeric id
func ExternalIDFromInt(id int64) ExternalID {
	return ExternalID(strconv.FormatInt(id, 10))
}

// IsZero reports whether the id is absent
func (id ExternalID) IsZero() bool {
	return id == "" || id == "0"
}

// String returns the decimal representation
func (id ExternalID) String() string {
	return string(id)
}

// UnmarshalJSON accepts numbers, numeric strings and null
func (id *ExternalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*id = ""
			return nil
		}
		parsed, err := ParseExternalID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("shared: external id must be a number or string: %w", err)
	}
	v, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		return fmt.Errorf("shared: invalid external id %s", n.String())
	}
	*id = ExternalID(strconv.FormatUint(v, 10))
	return nil
}

// MarshalJSON emits the id as a JSON number so stored payloads keep the
// remote wire shape.
func (id ExternalID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	return []byte(id), nil
}
