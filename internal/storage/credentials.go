package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MarkoPoloResearchLab/portfolio/internal/gate"
	"github.com/MarkoPoloResearchLab/portfolio/internal/model"
)

const (
	errorMessageLoadAdminOverride   = "storage: load admin override"
	errorMessageSaveAdminOverride   = "storage: save admin override"
	errorMessageDeleteAdminOverride = "storage: delete admin override"

	overrideUpdatedByConsole = "owner_console"
)

// CredentialOverrideRepository keeps the admin credential override in a single database row.
type CredentialOverrideRepository struct {
	database *gorm.DB
}

// NewCredentialOverrideRepository constructs a repository over a migrated database.
func NewCredentialOverrideRepository(database *gorm.DB) *CredentialOverrideRepository {
	return &CredentialOverrideRepository{database: database}
}

func (repository *CredentialOverrideRepository) LoadAdminOverride(ctx context.Context) (gate.CredentialPair, bool, error) {
	var override model.AdminCredentialOverride
	queryErr := repository.database.WithContext(ctx).
		First(&override, "id = ?", model.AdminCredentialOverrideID).Error
	if errors.Is(queryErr, gorm.ErrRecordNotFound) {
		return gate.CredentialPair{}, false, nil
	}
	if queryErr != nil {
		return gate.CredentialPair{}, false, fmt.Errorf("%s: %w", errorMessageLoadAdminOverride, queryErr)
	}
	return gate.CredentialPair{Username: override.Username, Password: override.Password}, true, nil
}

func (repository *CredentialOverrideRepository) SaveAdminOverride(ctx context.Context, pair gate.CredentialPair) error {
	override := model.AdminCredentialOverride{
		ID:        model.AdminCredentialOverrideID,
		Username:  pair.Username,
		Password:  pair.Password,
		UpdatedBy: overrideUpdatedByConsole,
	}
	saveErr := repository.database.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "password", "updated_by", "updated_at"}),
		}).
		Create(&override).Error
	if saveErr != nil {
		return fmt.Errorf("%s: %w", errorMessageSaveAdminOverride, saveErr)
	}
	return nil
}

func (repository *CredentialOverrideRepository) DeleteAdminOverride(ctx context.Context) error {
	deleteErr := repository.database.WithContext(ctx).
		Delete(&model.AdminCredentialOverride{}, "id = ?", model.AdminCredentialOverrideID).Error
	if deleteErr != nil {
		return fmt.Errorf("%s: %w", errorMessageDeleteAdminOverride, deleteErr)
	}
	return nil
}
