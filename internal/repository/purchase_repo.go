package repository

import (
	"velvet/internal/models"

	"gorm.io/gorm"
)

type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// CreateTx inserts the purchase inside the caller's transaction so the
// receipt uniqueness check commits together with the coin credit.
func (r *PurchaseRepository) CreateTx(tx *gorm.DB, p *models.Purchase) error {
	return tx.Create(p).Error
}

func (r *PurchaseRepository) GetByID(id uint) (*models.Purchase, error) {
	var p models.Purchase
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRepository) GetByReceiptID(receiptID string) (*models.Purchase, error) {
	var p models.Purchase
	if err := r.db.Where("receipt_id = ?", receiptID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRepository) ListByUser(userID uint, limit int) ([]models.Purchase, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	var list []models.Purchase
	err := r.db.Where("user_id = ?", userID).Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}
