package shared

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExternalID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ExternalID
		wantErr bool
	}{
		{"number", `7683885039821`, "7683885039821", false},
		{"numeric string", `"555"`, "555", false},
		{"null", `null`, "", false},
		{"empty string", `""`, "", false},
		{"non numeric string", `"abc"`, "", true},
		{"float", `1.5`, "", true},
		{"negative number", `-5`, "", true},
		{"negative string", `"-5"`, "", true},
		{"beyond int64", `18446744073709551615`, "18446744073709551615", false},
		{"object", `{}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ExternalID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestExternalID_MarshalJSON(t *testing.T) {
	t.Run("emits a number", func(t *testing.T) {
		data, err := json.Marshal(struct {
			ID ExternalID `json:"id"`
		}{ID: "999"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":999}`, string(data))
	})

	t.Run("emits null when absent", func(t *testing.T) {
		data, err := json.Marshal(struct {
			ID ExternalID `json:"id"`
		}{})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":null}`, string(data))
	})
}

func TestExternalID_IsZero(t *testing.T) {
	assert.True(t, ExternalID("").IsZero())
	assert.True(t, ExternalID("0").IsZero())
	assert.False(t, ExternalID("1").IsZero())
}

func TestParseExternalID(t *testing.T) {
	id, err := ParseExternalID("42")
	require.NoError(t, err)
	assert.Equal(t, ExternalID("42"), id)

	_, err = ParseExternalID("")
	assert.Error(t, err)

	_, err = ParseExternalID("-3")
	assert.Error(t, err)
}
