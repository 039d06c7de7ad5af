package repository

import (
	"errors"

	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PushEndpointRepository interface {
	Upsert(endpoint *model.PushEndpoint) error
	FindByEmail(email string) (*model.PushEndpoint, error)
}

type pushEndpointRepository struct {
	db *gorm.DB
}

func NewPushEndpointRepository(db *gorm.DB) PushEndpointRepository {
	return &pushEndpointRepository{db: db}
}

// Upsert keeps one endpoint per email, replacing the token and ARN
func (r *pushEndpointRepository) Upsert(endpoint *model.PushEndpoint) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"device_token", "endpoint_arn", "updated_at"}),
	}).Create(endpoint).Error
	if err != nil {
		logger.Error("Failed to upsert push endpoint in database", err, map[string]interface{}{
			"email": endpoint.Email,
		})
		return err
	}

	logger.Debug("Push endpoint saved in database", map[string]interface{}{
		"email": endpoint.Email,
	})
	return nil
}

func (r *pushEndpointRepository) FindByEmail(email string) (*model.PushEndpoint, error) {
	var endpoint model.PushEndpoint
	if err := r.db.Where("email = ?", email).First(&endpoint).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find push endpoint in database", err, map[string]interface{}{
				"email": email,
			})
		}
		return nil, err
	}
	return &endpoint, nil
}
