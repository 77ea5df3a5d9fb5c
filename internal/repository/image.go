package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bigkaa/boxstore/internal/database"
	"github.com/bigkaa/boxstore/internal/domain/model"
)

// ImageRepository — интерфейс доступа к изображениям боксов.
type ImageRepository interface {
	// Create сохраняет изображение и запись box_contents в одной транзакции.
	Create(ctx context.Context, img *model.Image) error
	// GetByID возвращает изображение с содержимым или ErrNotFound.
	GetByID(ctx context.Context, imageID string) (*model.Image, error)
	// GetMetadata возвращает метаданные изображения без содержимого или ErrNotFound.
	GetMetadata(ctx context.Context, imageID string) (*model.ImageMetadata, error)
}

type imageRepo struct {
	db DBTX
	tx TxRunner
}

// NewImageRepository создаёт репозиторий изображений.
func NewImageRepository(db DBTX, tx TxRunner) ImageRepository {
	return &imageRepo{db: db, tx: tx}
}

func (r *imageRepo) Create(ctx context.Context, img *model.Image) error {
	data := img.Data
	if data == nil {
		data = []byte{}
	}

	err := r.tx.RunInTx(ctx, func(tx database.Querier) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO images (id, box_id, image_data, content_type, created_at) VALUES (?, ?, ?, ?, ?)`,
			img.ID, img.BoxID, data, img.ContentType, img.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrConflict
			}
			return fmt.Errorf("ошибка сохранения изображения: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO box_contents (box_id, item_id) VALUES (?, ?)`,
			img.BoxID, img.ID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrConflict
			}
			return fmt.Errorf("ошибка привязки изображения к боксу: %w", err)
		}
		return nil
	})
	return err
}

func (r *imageRepo) GetByID(ctx context.Context, imageID string) (*model.Image, error) {
	img := &model.Image{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, box_id, image_data, content_type, created_at FROM images WHERE id = ?`,
		imageID,
	).Scan(&img.ID, &img.BoxID, &img.Data, &img.ContentType, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения изображения: %w", err)
	}
	return img, nil
}

func (r *imageRepo) GetMetadata(ctx context.Context, imageID string) (*model.ImageMetadata, error) {
	meta := &model.ImageMetadata{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, box_id, content_type, LENGTH(image_data), created_at FROM images WHERE id = ?`,
		imageID,
	).Scan(&meta.ID, &meta.BoxID, &meta.ContentType, &meta.Size, &meta.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения метаданных изображения: %w", err)
	}
	return meta, nil
}
