package repository

import (
	"velvet/internal/models"

	"gorm.io/gorm"
)

type GiftRepository struct {
	db *gorm.DB
}

func NewGiftRepository(db *gorm.DB) *GiftRepository {
	return &GiftRepository{db: db}
}

// CreateEventTx inserts the gift event inside the settlement transaction.
func (r *GiftRepository) CreateEventTx(tx *gorm.DB, e *models.GiftEvent) error {
	return tx.Create(e).Error
}

func (r *GiftRepository) GetEventByRef(eventRef string) (*models.GiftEvent, error) {
	var e models.GiftEvent
	if err := r.db.Where("event_ref = ?", eventRef).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *GiftRepository) ListEventsBySender(fromUserID uint, limit int) ([]models.GiftEvent, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	var list []models.GiftEvent
	err := r.db.Where("from_user_id = ?", fromUserID).Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}
