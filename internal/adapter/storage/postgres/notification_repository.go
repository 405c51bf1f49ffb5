package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/payment-relay/internal/domain"
	"github.com/seu-repo/payment-relay/internal/ports"
)

type NotificationRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewNotificationRepository(db *gorm.DB, log *zap.Logger) ports.NotificationRepository {
	return &NotificationRepository{
		db:  db,
		log: log,
	}
}

func (r *NotificationRepository) Save(ctx context.Context, doc *domain.NotificationDocument) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

func (r *NotificationRepository) FindByID(ctx context.Context, collection, id string) (*domain.NotificationDocument, error) {
	var doc domain.NotificationDocument
	err := r.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *NotificationRepository) FindPending(ctx context.Context, olderThan time.Time, limit int) ([]domain.NotificationDocument, error) {
	var docs []domain.NotificationDocument
	q := r.db.WithContext(ctx).
		Where("token <> '' AND created_at < ?", olderThan).
		Order("created_at asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&docs).Error
	return docs, err
}

// Delete is a no-op when the document is already gone.
func (r *NotificationRepository) Delete(ctx context.Context, collection, id string) error {
	res := r.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&domain.NotificationDocument{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		r.log.Debug("Notification document already deleted",
			zap.String("collection", collection),
			zap.String("id", id),
		)
	}
	return nil
}
