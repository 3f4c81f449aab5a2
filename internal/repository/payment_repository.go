package repository

import (
	"github.com/sefazor/reelmint-backend/internal/models"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

func (r *PaymentRepository) GetBySessionID(sessionID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("stripe_session_id = ?", sessionID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// MarkPaid transitions a payment to paid. The guard keeps paid and failed
// terminal, so webhook replays report false and callers skip re-crediting.
func (r *PaymentRepository) MarkPaid(sessionID string) (bool, error) {
	result := r.db.Exec(`
		UPDATE payments
		SET status = ?, updated_at = NOW()
		WHERE stripe_session_id = ? AND status NOT IN (?, ?)`,
		models.PaymentStatusPaid, sessionID,
		models.PaymentStatusPaid, models.PaymentStatusFailed)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PaymentRepository) MarkFailed(sessionID string) error {
	return r.db.Exec(`
		UPDATE payments
		SET status = ?, updated_at = NOW()
		WHERE stripe_session_id = ? AND status NOT IN (?, ?)`,
		models.PaymentStatusFailed, sessionID,
		models.PaymentStatusPaid, models.PaymentStatusFailed).Error
}
