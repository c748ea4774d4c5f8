package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	connID := uuid.New()
	companyID := uuid.New()
	countryID := uuid.New()

	t.Run("Imported customer is active and remote-origin", func(t *testing.T) {
		c, err := NewCustomer(connID, companyID, "555", CustomerProfile{
			Name:      " A B ",
			Email:     "a@example.com",
			CountryID: &countryID,
		})
		require.NoError(t, err)
		assert.Equal(t, "A B", c.Name)
		assert.EqualValues(t, "555", c.ExternalID)
		assert.Equal(t, connID, c.ConnectionID)
		assert.True(t, c.IsExternalOrigin)
		assert.True(t, c.Active)
		assert.Equal(t, &countryID, c.CountryID)
		assert.Nil(t, c.StateID)
	})

	t.Run("External id is required", func(t *testing.T) {
		_, err := NewCustomer(connID, companyID, "", CustomerProfile{Name: "A"})
		assert.Error(t, err)
	})
}

func TestCustomer_ApplyAndArchive(t *testing.T) {
	c, err := NewCustomer(uuid.New(), uuid.New(), "1", CustomerProfile{Name: "Old", City: "Pune"})
	require.NoError(t, err)

	c.Apply(CustomerProfile{Name: "New", Street: "1 Main St"})
	assert.Equal(t, "New", c.Name)
	assert.Equal(t, "1 Main St", c.Street)
	assert.Empty(t, c.City)
	assert.Equal(t, "New", c.Profile().Name)

	c.Archive()
	assert.False(t, c.Active)
}
