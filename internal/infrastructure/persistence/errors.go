package persistence

import (
	"errors"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"gorm.io/gorm"
)

// notFound maps gorm.ErrRecordNotFound to the domain's sentinel
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// duplicateExternalID maps a unique violation on (connection_id, external_id)
// to shared.ErrDuplicateExternalID
func duplicateExternalID(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrDuplicateExternalID
	}
	return err
}
