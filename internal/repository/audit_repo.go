package repository

import (
	"velvet/internal/models"

	"gorm.io/gorm"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(log *models.AuditLog) error {
	return r.db.Create(log).Error
}

func (r *AuditLogRepository) ListByActor(actorID uint, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	var list []models.AuditLog
	err := r.db.Where("actor_id = ?", actorID).Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}
