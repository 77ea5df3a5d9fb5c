package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bigkaa/boxstore/internal/domain/model"
)

// BackgroundRepository — интерфейс доступа к фоновым изображениям.
type BackgroundRepository interface {
	// Upsert сохраняет фон бокса, заменяя предыдущий.
	Upsert(ctx context.Context, bg *model.BackgroundImage) error
	// GetByBoxID возвращает фон бокса или ErrNotFound.
	GetByBoxID(ctx context.Context, boxID string) (*model.BackgroundImage, error)
}

type backgroundRepo struct {
	db DBTX
}

// NewBackgroundRepository создаёт репозиторий фоновых изображений.
func NewBackgroundRepository(db DBTX) BackgroundRepository {
	return &backgroundRepo{db: db}
}

func (r *backgroundRepo) Upsert(ctx context.Context, bg *model.BackgroundImage) error {
	data := bg.Data
	if data == nil {
		data = []byte{}
	}

	query := `
		INSERT INTO background_images (box_id, image_data, content_type, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (box_id) DO UPDATE SET
			image_data = excluded.image_data,
			content_type = excluded.content_type,
			updated_at = excluded.updated_at`

	if _, err := r.db.ExecContext(ctx, query, bg.BoxID, data, bg.ContentType, bg.UpdatedAt); err != nil {
		return fmt.Errorf("ошибка сохранения фона: %w", err)
	}
	return nil
}

func (r *backgroundRepo) GetByBoxID(ctx context.Context, boxID string) (*model.BackgroundImage, error) {
	bg := &model.BackgroundImage{}
	err := r.db.QueryRowContext(ctx,
		`SELECT box_id, image_data, content_type, updated_at FROM background_images WHERE box_id = ?`,
		boxID,
	).Scan(&bg.BoxID, &bg.Data, &bg.ContentType, &bg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения фона: %w", err)
	}
	return bg, nil
}
