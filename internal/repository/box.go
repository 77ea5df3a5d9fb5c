package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bigkaa/boxstore/internal/domain/model"
)

// BoxRepository — интерфейс доступа к реестру боксов.
type BoxRepository interface {
	// Create регистрирует бокс. ErrConflict, если идентификатор занят.
	Create(ctx context.Context, boxID string) error
	// ListWithImages возвращает все боксы со списками изображений.
	// В список попадают только элементы box_contents, для которых есть строка в images.
	ListWithImages(ctx context.Context) ([]model.BoxSummary, error)
}

type boxRepo struct {
	db DBTX
}

// NewBoxRepository создаёт репозиторий боксов.
func NewBoxRepository(db DBTX) BoxRepository {
	return &boxRepo{db: db}
}

func (r *boxRepo) Create(ctx context.Context, boxID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO box_ids (id) VALUES (?)`, boxID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("ошибка создания бокса: %w", err)
	}
	return nil
}

func (r *boxRepo) ListWithImages(ctx context.Context) ([]model.BoxSummary, error) {
	// LEFT JOIN сохраняет пустые боксы.
	query := `
		SELECT b.id, x.image_id
		FROM box_ids b
		LEFT JOIN (
			SELECT c.box_id, i.id AS image_id, i.created_at
			FROM box_contents c
			JOIN images i ON i.id = c.item_id
		) x ON x.box_id = b.id
		ORDER BY b.id, x.created_at, x.image_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка боксов: %w", err)
	}
	defer rows.Close()

	result := []model.BoxSummary{}
	for rows.Next() {
		var (
			boxID   string
			imageID sql.NullString
		)
		if err := rows.Scan(&boxID, &imageID); err != nil {
			return nil, fmt.Errorf("ошибка сканирования бокса: %w", err)
		}

		if len(result) == 0 || result[len(result)-1].BoxID != boxID {
			result = append(result, model.BoxSummary{BoxID: boxID, ImageIDs: []string{}})
		}
		if imageID.Valid {
			last := &result[len(result)-1]
			last.ImageIDs = append(last.ImageIDs, imageID.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации боксов: %w", err)
	}

	return result, nil
}
