package repository

import (
	"github.com/sefazor/reelmint-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate resolves a user by external id, inserting on first reference.
// Concurrent first-time calls race on the unique constraint; the loser's
// insert is ignored and resolved by re-reading, so N concurrent callers all
// converge on the same row. The credit row is initialized alongside.
func (r *UserRepository) GetOrCreate(externalID string) (*models.User, error) {
	user := models.User{ExternalID: externalID}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(&user)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		if err := r.db.Where("external_id = ?", externalID).First(&user).Error; err != nil {
			return nil, err
		}
	}

	if err := r.ensureCredits(user.ID); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByExternalID(externalID string) (*models.User, error) {
	var user models.User
	err := r.db.Where("external_id = ?", externalID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ensureCredits(userID uint) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&models.CreditBalance{UserID: userID}).Error
}
