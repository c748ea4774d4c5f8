package persistence

import (
	"fmt"

	"github.com/erp/shopify-connector/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// AllModels lists every persisted model in dependency order
func AllModels() []any {
	return []any{
		&models.ConnectionModel{},
		&models.WebhookModel{},
		&models.QueueModel{},
		&models.QueueLineModel{},
		&models.ProcessLogModel{},
		&models.PaymentGatewayModel{},
		&models.AutomationWorkflowModel{},
		&models.OrderProcessConfigModel{},
		&models.SequenceModel{},
		&models.CountryModel{},
		&models.CountryStateModel{},
		&models.CustomerModel{},
		&models.CategoryModel{},
		&models.AttributeModel{},
		&models.AttributeValueModel{},
		&models.ProductTemplateModel{},
		&models.VariantModel{},
		&models.StockQuantModel{},
		&models.TaxModel{},
		&models.SalesOrderModel{},
		&models.SalesOrderLineModel{},
		&models.DeliveryModel{},
		&models.InvoiceModel{},
		&models.PaymentModel{},
	}
}

// externalIndexes are the partial unique indexes enforcing one active record
// per (connection_id, external_id). They mirror the init_connector migration.
var externalIndexes = []struct {
	name  string
	table string
	where string
}{
	{"ux_customers_connection_external", "customers", "active"},
	{"ux_product_templates_connection_external", "product_templates", "active"},
	{"ux_product_variants_connection_external", "product_variants", "active AND external_id <> ''"},
	{"ux_sales_orders_connection_external", "sales_orders", "active"},
}

// AutoMigrate creates the schema from the models. It is used by tests and
// local development; deployed databases are migrated by cmd/migrate.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, idx := range externalIndexes {
		stmt := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (connection_id, external_id) WHERE %s",
			idx.name, idx.table, idx.where)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}
