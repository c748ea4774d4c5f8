package persistence

import (
	"context"
	"fmt"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CredentialSealer encrypts connection credentials at rest
type CredentialSealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// GormConnectionRepository implements integration.ConnectionRepository using GORM
type GormConnectionRepository struct {
	db     *gorm.DB
	sealer CredentialSealer
}

// NewGormConnectionRepository creates a new GormConnectionRepository
func NewGormConnectionRepository(db *gorm.DB) *GormConnectionRepository {
	return &GormConnectionRepository{db: db}
}

// WithSealer stores the access token and API secret sealed
func (r *GormConnectionRepository) WithSealer(sealer CredentialSealer) *GormConnectionRepository {
	r.sealer = sealer
	return r
}

// FindByID finds a connection by its ID
func (r *GormConnectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Connection, error) {
	var model models.ConnectionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, integration.ErrConnectionNotFound)
	}
	return r.toDomain(&model)
}

// FindAll returns every connection ordered by name
func (r *GormConnectionRepository) FindAll(ctx context.Context) ([]*integration.Connection, error) {
	var rows []models.ConnectionModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(rows)
}

// FindActive returns active connections in any state
func (r *GormConnectionRepository) FindActive(ctx context.Context) ([]*integration.Connection, error) {
	var rows []models.ConnectionModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(rows)
}

// Save creates or updates a connection
func (r *GormConnectionRepository) Save(ctx context.Context, conn *integration.Connection) error {
	model := models.ConnectionModelFromDomain(conn)
	if r.sealer != nil {
		var err error
		if model.AccessToken, err = r.seal(model.AccessToken); err != nil {
			return err
		}
		if model.APISecret, err = r.seal(model.APISecret); err != nil {
			return err
		}
	}
	return r.db.WithContext(ctx).Save(model).Error
}

func (r *GormConnectionRepository) seal(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	sealed, err := r.sealer.Seal(value)
	if err != nil {
		return "", fmt.Errorf("seal connection credential: %w", err)
	}
	return sealed, nil
}

func (r *GormConnectionRepository) open(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	plain, err := r.sealer.Open(value)
	if err != nil {
		return "", fmt.Errorf("open connection credential: %w", err)
	}
	return plain, nil
}

func (r *GormConnectionRepository) toDomain(model *models.ConnectionModel) (*integration.Connection, error) {
	conn := model.ToDomain()
	if r.sealer == nil {
		return conn, nil
	}
	var err error
	if conn.AccessToken, err = r.open(conn.AccessToken); err != nil {
		return nil, err
	}
	if conn.APISecret, err = r.open(conn.APISecret); err != nil {
		return nil, err
	}
	return conn, nil
}

func (r *GormConnectionRepository) toDomainList(rows []models.ConnectionModel) ([]*integration.Connection, error) {
	out := make([]*integration.Connection, 0, len(rows))
	for i := range rows {
		conn, err := r.toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, conn)
	}
	return out, nil
}

// Ensure GormConnectionRepository implements the interface
var _ integration.ConnectionRepository = (*GormConnectionRepository)(nil)
