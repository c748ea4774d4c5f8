package integration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/erp/shopify-connector/internal/domain/catalog"
	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductMapper upserts remote products onto local templates and variants.
// Categories, attributes and values are created on demand and never removed.
type ProductMapper struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	attributes catalog.AttributeRepository
	images     integration.ImageFetcher
	imageStore integration.ImageStore
	auditor    *Auditor
	metrics    SyncMetrics
	logger     *zap.Logger
}

// NewProductMapper creates a new ProductMapper without image handling
func NewProductMapper(
	products catalog.ProductRepository,
	categories catalog.CategoryRepository,
	attributes catalog.AttributeRepository,
	auditor *Auditor,
	metrics SyncMetrics,
	logger *zap.Logger,
) *ProductMapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductMapper{
		products:   products,
		categories: categories,
		attributes: attributes,
		auditor:    auditor,
		metrics:    metricsOrNop(metrics),
		logger:     logger,
	}
}

// WithImages enables fetching the product's main image into a store
func (m *ProductMapper) WithImages(fetcher integration.ImageFetcher, store integration.ImageStore) *ProductMapper {
	m.images = fetcher
	m.imageStore = store
	return m
}

// Upsert creates or updates the local template for a remote product, then
// materialises missing variants and stamps remote variant data on matches
func (m *ProductMapper) Upsert(ctx context.Context, conn *integration.Connection, p *integration.ProductPayload) (*catalog.ProductTemplate, error) {
	start := time.Now()
	defer func() { m.metrics.UpsertDuration(integration.EntityKindProduct.String(), time.Since(start)) }()

	if p == nil || p.ID.IsZero() {
		err := fmt.Errorf("%w: product id missing", integration.ErrMalformedPayload)
		m.auditor.Failure(ctx, conn.ID, integration.ResourceProduct, "", "Product payload has no id", "", err)
		return nil, err
	}
	resourceID := p.ID.String()
	fail := func(err error) (*catalog.ProductTemplate, error) {
		m.logger.Error("Failed to upsert product",
			zap.String("connection_id", conn.ID.String()),
			zap.String("external_id", resourceID),
			zap.Error(err))
		m.auditor.Failure(ctx, conn.ID, integration.ResourceProduct, resourceID,
			"Failed to import product "+p.Title, responseText(p), err)
		return nil, err
	}

	category, err := m.ensureCategory(ctx, p.ProductType)
	if err != nil {
		return fail(err)
	}
	lines, err := m.attributeLines(ctx, p.Options)
	if err != nil {
		return fail(err)
	}

	template, created, err := m.applyTemplate(ctx, conn, p, category, lines)
	if err != nil {
		return fail(err)
	}

	message := "Product updated: " + template.Name
	if created {
		message = "Product created: " + template.Name
	}
	log := integration.NewProcessLog(conn.ID, integration.ResourceProduct, resourceID, message, responseText(p))
	if err := m.syncVariants(ctx, template, p, log); err != nil {
		return fail(err)
	}
	m.auditor.Record(ctx, log)
	return template, nil
}

func (m *ProductMapper) applyTemplate(
	ctx context.Context,
	conn *integration.Connection,
	p *integration.ProductPayload,
	category *catalog.Category,
	lines []catalog.AttributeLine,
) (*catalog.ProductTemplate, bool, error) {
	update := func(t *catalog.ProductTemplate) error {
		t.Rename(p.Title)
		if category != nil {
			t.SetCategory(&category.ID)
		}
		t.MergeAttributeLines(lines)
		m.applyImage(ctx, conn, t, p.Image)
		return m.products.Save(ctx, t)
	}

	existing, err := m.products.FindByExternalID(ctx, conn.ID, p.ID)
	switch {
	case err == nil:
		return existing, false, update(existing)
	case !errors.Is(err, catalog.ErrProductNotFound):
		return nil, false, err
	}

	template, err := catalog.NewProductTemplate(conn.ID, conn.CompanyID, p.ID, p.Title)
	if err != nil {
		return nil, false, err
	}
	if category != nil {
		template.SetCategory(&category.ID)
	}
	template.MergeAttributeLines(lines)
	m.applyImage(ctx, conn, template, p.Image)

	err = m.products.Create(ctx, template)
	if errors.Is(err, shared.ErrDuplicateExternalID) {
		winner, findErr := m.products.FindByExternalID(ctx, conn.ID, p.ID)
		if findErr != nil {
			return nil, false, findErr
		}
		return winner, false, update(winner)
	}
	if err != nil {
		return nil, false, err
	}
	return template, true, nil
}

// syncVariants creates variants for uncovered combinations and writes remote
// ids onto the local variant each remote variant matches
func (m *ProductMapper) syncVariants(ctx context.Context, t *catalog.ProductTemplate, p *integration.ProductPayload, log *integration.ProcessLog) error {
	existing, err := m.products.FindVariants(ctx, t.ID)
	if err != nil {
		return err
	}
	missing := catalog.MissingVariants(t, existing)
	for _, v := range missing {
		if err := m.products.SaveVariant(ctx, v); err != nil {
			return err
		}
	}
	variants := append(existing, missing...)

	options := sortedOptions(p.Options)
	for i := range p.Variants {
		remote := &p.Variants[i]
		variantID := remote.ID.String()
		match := catalog.MatchVariant(variants, variantSelections(options, remote))
		if match == nil {
			log.AddError(t.Name, variantID, "No local variant matches the remote option values", "")
			continue
		}
		match.ApplyRemote(catalog.RemoteVariant{
			ExternalID:      remote.ID,
			Barcode:         remote.Barcode,
			Weight:          remote.Weight,
			WeightUnit:      remote.WeightUnit,
			InventoryItemID: remote.InventoryItemID,
		})
		if err := m.products.SaveVariant(ctx, match); err != nil {
			log.AddError(t.Name, variantID, err.Error(), "")
			continue
		}
		log.AddSuccess(t.Name, variantID, "Variant synchronised", "")
	}
	return nil
}

// applyImage stores the product's main image. A failed download or store
// keeps the previous image.
func (m *ProductMapper) applyImage(ctx context.Context, conn *integration.Connection, t *catalog.ProductTemplate, img *integration.ImagePayload) {
	if m.images == nil || m.imageStore == nil || img == nil || strings.TrimSpace(img.Src) == "" {
		return
	}
	data, contentType, err := m.images.FetchImage(ctx, img.Src)
	if err != nil {
		m.logger.Warn("Failed to fetch product image",
			zap.String("external_id", t.ExternalID.String()),
			zap.String("src", img.Src),
			zap.Error(err))
		return
	}
	sum := sha256.Sum256(data)
	key := fmt.Sprintf("products/%s/%s/%s", conn.ID, t.ExternalID, hex.EncodeToString(sum[:]))
	if key == t.ImageKey {
		return
	}
	stored, err := m.imageStore.Put(ctx, key, data, contentType)
	if err != nil {
		m.logger.Warn("Failed to store product image",
			zap.String("external_id", t.ExternalID.String()),
			zap.String("key", key),
			zap.Error(err))
		return
	}
	t.SetImage(stored)
}

func (m *ProductMapper) ensureCategory(ctx context.Context, productType string) (*catalog.Category, error) {
	name := strings.TrimSpace(productType)
	if name == "" {
		return nil, nil
	}
	category, err := m.categories.FindByName(ctx, name, true)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, catalog.ErrCategoryNotFound) {
		return nil, err
	}
	category, err = catalog.NewCategory(name, true)
	if err != nil {
		return nil, err
	}
	if err := m.categories.Create(ctx, category); err != nil {
		if errors.Is(err, shared.ErrDuplicateExternalID) {
			return m.categories.FindByName(ctx, name, true)
		}
		return nil, err
	}
	return category, nil
}

// attributeLines materialises one attribute line per remote option, in option position order
func (m *ProductMapper) attributeLines(ctx context.Context, options []integration.OptionPayload) ([]catalog.AttributeLine, error) {
	lines := make([]catalog.AttributeLine, 0, len(options))
	for _, opt := range sortedOptions(options) {
		name := strings.TrimSpace(opt.Name)
		if name == "" {
			continue
		}
		attr, err := m.ensureAttribute(ctx, name)
		if err != nil {
			return nil, err
		}
		line := catalog.AttributeLine{AttributeID: attr.ID, AttributeName: attr.Name}
		for _, raw := range opt.Values {
			valueName := strings.TrimSpace(raw)
			if valueName == "" {
				continue
			}
			value, err := m.ensureValue(ctx, attr.ID, valueName)
			if err != nil {
				return nil, err
			}
			if !line.HasValue(value.ID) {
				line.Values = append(line.Values, catalog.ValueRef{ID: value.ID, Name: value.Name})
			}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (m *ProductMapper) ensureAttribute(ctx context.Context, name string) (*catalog.Attribute, error) {
	attr, err := m.attributes.FindByName(ctx, name, true)
	if err == nil {
		return attr, nil
	}
	if !errors.Is(err, catalog.ErrAttributeNotFound) {
		return nil, err
	}
	attr, err = catalog.NewAttribute(name, true)
	if err != nil {
		return nil, err
	}
	if err := m.attributes.Create(ctx, attr); err != nil {
		if errors.Is(err, shared.ErrDuplicateExternalID) {
			return m.attributes.FindByName(ctx, name, true)
		}
		return nil, err
	}
	return attr, nil
}

func (m *ProductMapper) ensureValue(ctx context.Context, attributeID uuid.UUID, name string) (*catalog.AttributeValue, error) {
	value, err := m.attributes.FindValue(ctx, attributeID, name)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, catalog.ErrValueNotFound) {
		return nil, err
	}
	value, err = catalog.NewAttributeValue(attributeID, name)
	if err != nil {
		return nil, err
	}
	if err := m.attributes.CreateValue(ctx, value); err != nil {
		if errors.Is(err, shared.ErrDuplicateExternalID) {
			return m.attributes.FindValue(ctx, attributeID, name)
		}
		return nil, err
	}
	return value, nil
}

// Archive soft-deletes every template with a remote id, and their variants.
// Returns false when nothing was active.
func (m *ProductMapper) Archive(ctx context.Context, conn *integration.Connection, externalID shared.ExternalID) (bool, error) {
	templates, err := m.products.FindAllByExternalID(ctx, conn.ID, externalID)
	if err != nil {
		return false, err
	}
	if len(templates) == 0 {
		return false, nil
	}
	for _, t := range templates {
		variants, err := m.products.FindVariants(ctx, t.ID)
		if err != nil {
			return false, err
		}
		for _, v := range variants {
			v.Archive()
			if err := m.products.SaveVariant(ctx, v); err != nil {
				return false, err
			}
		}
		t.Archive()
		if err := m.products.Save(ctx, t); err != nil {
			m.auditor.Failure(ctx, conn.ID, integration.ResourceProduct, externalID.String(), "Failed to archive product", "", err)
			return false, err
		}
	}
	log := integration.NewProcessLog(conn.ID, integration.ResourceProduct, externalID.String(),
		fmt.Sprintf("Product archived: %d template(s)", len(templates)), "")
	m.auditor.Record(ctx, log)
	return true, nil
}

func sortedOptions(options []integration.OptionPayload) []integration.OptionPayload {
	sorted := append([]integration.OptionPayload(nil), options...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	return sorted
}

// variantSelections pairs each declared option with the remote variant's value for it
func variantSelections(options []integration.OptionPayload, v *integration.VariantPayload) []catalog.OptionSelection {
	selections := make([]catalog.OptionSelection, 0, len(options))
	for _, opt := range options {
		name := strings.TrimSpace(opt.Name)
		value := strings.TrimSpace(v.Option(opt.Position))
		if name == "" || value == "" {
			continue
		}
		selections = append(selections, catalog.OptionSelection{AttributeName: name, Value: value})
	}
	return selections
}
