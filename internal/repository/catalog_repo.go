package repository

import (
	"errors"

	"velvet/internal/domain"
	"velvet/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository resolves coin packages and gifts. Inactive rows resolve
// the same as missing ones: settlement must never sell a retired item.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetActivePackage(id uint) (*models.CoinPackage, error) {
	var p models.CoinPackage
	err := r.db.Where("id = ? AND active = ?", id, true).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUnknownResource
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepository) GetActiveGift(id uint) (*models.Gift, error) {
	var g models.Gift
	err := r.db.Where("id = ? AND active = ?", id, true).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUnknownResource
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *CatalogRepository) ListActivePackages() ([]models.CoinPackage, error) {
	var list []models.CoinPackage
	err := r.db.Where("active = ?", true).Order("price_cents ASC").Find(&list).Error
	return list, err
}

func (r *CatalogRepository) ListActiveGifts() ([]models.Gift, error) {
	var list []models.Gift
	err := r.db.Where("active = ?", true).Order("coin_price ASC").Find(&list).Error
	return list, err
}
