package integration

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/erp/shopify-connector/internal/domain/catalog"
	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeProduct(t *testing.T, raw string) *integration.ProductPayload {
	t.Helper()
	p, err := integration.DecodeProduct([]byte(raw))
	require.NoError(t, err)
	return p
}

func valueNames(line catalog.AttributeLine) []string {
	names := make([]string, len(line.Values))
	for i, v := range line.Values {
		names[i] = v.Name
	}
	return names
}

type stubImages struct {
	data    []byte
	err     error
	fetches int
}

func (s *stubImages) FetchImage(context.Context, string) ([]byte, string, error) {
	s.fetches++
	if s.err != nil {
		return nil, "", s.err
	}
	return s.data, "image/png", nil
}

type stubImageStore struct {
	keys []string
}

func (s *stubImageStore) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	s.keys = append(s.keys, key)
	return key, nil
}

func TestProductMapper_Upsert(t *testing.T) {
	t.Run("creates template, category and variants", func(t *testing.T) {
		h := newTestHarness(t)
		p := decodeProduct(t, `{
			"id": 100, "title": "Shirt", "product_type": "Apparel",
			"options": [
				{"name": "Size", "position": 2, "values": ["S", "M"]},
				{"name": "Color", "position": 1, "values": ["Red", "Blue"]}
			],
			"variants": [
				{"id": 1001, "option1": "Red", "option2": "S", "barcode": "B-1", "weight": 0.5, "weight_unit": "kg", "inventory_item_id": 9001},
				{"id": 1002, "option1": "Blue", "option2": "M"}
			]
		}`)

		tmpl, err := h.productM.Upsert(t.Context(), h.conn, p)
		require.NoError(t, err)

		assert.Equal(t, "Shirt", tmpl.Name)
		require.NotNil(t, tmpl.CategoryID)
		require.Len(t, h.categories.rows, 1)
		assert.Equal(t, "Apparel", h.categories.rows[0].Name)
		assert.True(t, h.categories.rows[0].IsShopify)

		require.Len(t, tmpl.AttributeLines, 2)
		assert.Equal(t, "Color", tmpl.AttributeLines[0].AttributeName)
		assert.Equal(t, "Size", tmpl.AttributeLines[1].AttributeName)

		variants, err := h.products.FindVariants(t.Context(), tmpl.ID)
		require.NoError(t, err)
		assert.Len(t, variants, 4)

		red, err := h.products.FindVariantByExternalID(t.Context(), h.conn.ID, "1001")
		require.NoError(t, err)
		color, _ := red.ValueFor("Color")
		size, _ := red.ValueFor("Size")
		assert.Equal(t, "Red", color)
		assert.Equal(t, "S", size)
		assert.Equal(t, "B-1", red.Barcode)
		assert.Equal(t, "0.5", red.Weight.String())
		assert.Equal(t, shared.ExternalID("9001"), red.InventoryItemID)

		blue, err := h.products.FindVariantByExternalID(t.Context(), h.conn.ID, "1002")
		require.NoError(t, err)
		color, _ = blue.ValueFor("Color")
		assert.Equal(t, "Blue", color)

		logs := h.logs.all()
		require.Len(t, logs, 1)
		assert.Equal(t, "Product created: Shirt", logs[0].Message)
		assert.Len(t, logs[0].Lines, 2)
		assert.False(t, logs[0].HasErrors())
	})

	t.Run("attribute values are merged, never removed", func(t *testing.T) {
		h := newTestHarness(t)
		first := decodeProduct(t, `{"id": 200, "title": "Mug",
			"options": [{"name": "Color", "position": 1, "values": ["Red", "Blue"]}]}`)
		second := decodeProduct(t, `{"id": 200, "title": "Mug",
			"options": [{"name": "Color", "position": 1, "values": ["Blue", "Green"]}]}`)

		_, err := h.productM.Upsert(t.Context(), h.conn, first)
		require.NoError(t, err)
		tmpl, err := h.productM.Upsert(t.Context(), h.conn, second)
		require.NoError(t, err)

		require.Len(t, tmpl.AttributeLines, 1)
		assert.Equal(t, []string{"Red", "Blue", "Green"}, valueNames(tmpl.AttributeLines[0]))

		variants, err := h.products.FindVariants(t.Context(), tmpl.ID)
		require.NoError(t, err)
		assert.Len(t, variants, 3)
		assert.Len(t, h.attributes.attrs, 1)
		assert.Len(t, h.attributes.values, 3)
	})

	t.Run("unmatched variant is logged as an error line", func(t *testing.T) {
		h := newTestHarness(t)
		p := decodeProduct(t, `{"id": 300, "title": "Cap",
			"options": [{"name": "Color", "position": 1, "values": ["Red"]}],
			"variants": [{"id": 3001, "option1": "Purple"}]}`)

		_, err := h.productM.Upsert(t.Context(), h.conn, p)
		require.NoError(t, err)

		logs := h.logs.all()
		require.Len(t, logs, 1)
		assert.True(t, logs[0].HasErrors())
	})

	t.Run("stores image under a content-addressed key", func(t *testing.T) {
		h := newTestHarness(t)
		images := &stubImages{data: []byte("png-bytes")}
		store := &stubImageStore{}
		h.productM.WithImages(images, store)
		raw := `{"id": 400, "title": "Poster", "image": {"src": "https://cdn.example.com/poster.png"}}`

		tmpl, err := h.productM.Upsert(t.Context(), h.conn, decodeProduct(t, raw))
		require.NoError(t, err)
		require.Len(t, store.keys, 1)
		assert.True(t, strings.HasPrefix(tmpl.ImageKey, "products/"+h.conn.ID.String()+"/400/"))

		_, err = h.productM.Upsert(t.Context(), h.conn, decodeProduct(t, raw))
		require.NoError(t, err)
		assert.Equal(t, 2, images.fetches)
		assert.Len(t, store.keys, 1, "unchanged image is not stored again")
	})

	t.Run("failed image fetch keeps the product", func(t *testing.T) {
		h := newTestHarness(t)
		h.productM.WithImages(&stubImages{err: errors.New("timeout")}, &stubImageStore{})

		tmpl, err := h.productM.Upsert(t.Context(), h.conn,
			decodeProduct(t, `{"id": 500, "title": "Lamp", "image": {"src": "https://cdn.example.com/lamp.png"}}`))
		require.NoError(t, err)
		assert.Empty(t, tmpl.ImageKey)
	})
}

func TestProductMapper_Archive(t *testing.T) {
	h := newTestHarness(t)
	tmpl, err := h.productM.Upsert(t.Context(), h.conn, decodeProduct(t, `{"id": 600, "title": "Desk",
		"variants": [{"id": 6001}]}`))
	require.NoError(t, err)

	archived, err := h.productM.Archive(t.Context(), h.conn, "600")
	require.NoError(t, err)
	assert.True(t, archived)
	assert.False(t, tmpl.Active)

	variants, err := h.products.FindVariants(t.Context(), tmpl.ID)
	require.NoError(t, err)
	for _, v := range variants {
		assert.False(t, v.Active)
	}

	archived, err = h.productM.Archive(t.Context(), h.conn, "600")
	require.NoError(t, err)
	assert.False(t, archived)
}
