package repository

import (
	"context"
	"fmt"

	"github.com/bigkaa/boxstore/internal/domain/model"
)

// TextRepository — интерфейс доступа к текстовым заметкам.
type TextRepository interface {
	// Create сохраняет текст и заполняет t.ID.
	Create(ctx context.Context, t *model.Text) error
	// ListByBox возвращает тексты бокса, новые первыми.
	ListByBox(ctx context.Context, boxID string) ([]*model.Text, error)
	// Delete удаляет текст или возвращает ErrNotFound.
	Delete(ctx context.Context, id int64) error
}

type textRepo struct {
	db DBTX
}

// NewTextRepository создаёт репозиторий текстов.
func NewTextRepository(db DBTX) TextRepository {
	return &textRepo{db: db}
}

func (r *textRepo) Create(ctx context.Context, t *model.Text) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO texts (box_id, content, created_at) VALUES (?, ?, ?) RETURNING id`,
		t.BoxID, t.Content, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("ошибка сохранения текста: %w", err)
	}
	return nil
}

func (r *textRepo) ListByBox(ctx context.Context, boxID string) ([]*model.Text, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, box_id, content, created_at FROM texts WHERE box_id = ? ORDER BY created_at DESC, id DESC`,
		boxID,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения текстов: %w", err)
	}
	defer rows.Close()

	result := []*model.Text{}
	for rows.Next() {
		t := &model.Text{}
		if err := rows.Scan(&t.ID, &t.BoxID, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования текста: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации текстов: %w", err)
	}
	return result, nil
}

func (r *textRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM texts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления текста: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка удаления текста: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
