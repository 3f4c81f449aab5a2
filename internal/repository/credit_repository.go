package repository

import (
	"errors"

	"github.com/sefazor/reelmint-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientCredits signals a rejected decrement that would have taken
// the balance below zero.
var ErrInsufficientCredits = errors.New("insufficient credits")

type CreditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

// Get returns the user's balance, lazily creating the row at 0.
func (r *CreditRepository) Get(userID uint) (int, error) {
	var balance models.CreditBalance
	err := r.db.Where("user_id = ?", userID).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.ensure(userID); err != nil {
			return 0, err
		}
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance.Credits, nil
}

// Add grants credits as a single atomic increment.
func (r *CreditRepository) Add(userID uint, amount int) error {
	if err := r.ensure(userID); err != nil {
		return err
	}
	return r.db.Exec(`
		UPDATE credit_balances
		SET credits = credits + ?, updated_at = NOW()
		WHERE user_id = ?`, amount, userID).Error
}

// Spend decrements atomically, refusing to go negative. The conditional
// UPDATE serializes concurrent decrements at the row level.
func (r *CreditRepository) Spend(userID uint, amount int) error {
	result := r.db.Exec(`
		UPDATE credit_balances
		SET credits = credits - ?, updated_at = NOW()
		WHERE user_id = ? AND credits >= ?`, amount, userID, amount)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientCredits
	}
	return nil
}

func (r *CreditRepository) ensure(userID uint) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&models.CreditBalance{UserID: userID}).Error
}
