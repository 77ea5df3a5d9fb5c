package repository

import (
	"context"
	"fmt"

	"github.com/bigkaa/boxstore/internal/domain/model"
)

// trackColumns — список столбцов таблицы spotify_songs для SELECT-запросов.
const trackColumns = `id, box_id, spotify_id, name, artist, album,
	album_cover_url, preview_url, spotify_url, created_at`

// TrackRepository — интерфейс доступа к сохранённым трекам.
type TrackRepository interface {
	// Create сохраняет трек и заполняет t.ID. Дубликаты (box_id, spotify_id) допускаются.
	Create(ctx context.Context, t *model.Track) error
	// ListByBox возвращает треки бокса, новые первыми.
	ListByBox(ctx context.Context, boxID string) ([]*model.Track, error)
	// Delete удаляет трек или возвращает ErrNotFound.
	Delete(ctx context.Context, id int64) error
}

type trackRepo struct {
	db DBTX
}

// NewTrackRepository создаёт репозиторий треков.
func NewTrackRepository(db DBTX) TrackRepository {
	return &trackRepo{db: db}
}

func (r *trackRepo) Create(ctx context.Context, t *model.Track) error {
	query := `
		INSERT INTO spotify_songs
			(box_id, spotify_id, name, artist, album, album_cover_url, preview_url, spotify_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		t.BoxID, t.RemoteID, t.Name, t.Artist, t.Album,
		t.AlbumCoverURL, t.PreviewURL, t.RemoteURL, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("ошибка сохранения трека: %w", err)
	}
	return nil
}

func (r *trackRepo) ListByBox(ctx context.Context, boxID string) ([]*model.Track, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM spotify_songs WHERE box_id = ? ORDER BY created_at DESC, id DESC`,
		trackColumns,
	)

	rows, err := r.db.QueryContext(ctx, query, boxID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения треков: %w", err)
	}
	defer rows.Close()

	result := []*model.Track{}
	for rows.Next() {
		t := &model.Track{}
		if err := rows.Scan(
			&t.ID, &t.BoxID, &t.RemoteID, &t.Name, &t.Artist, &t.Album,
			&t.AlbumCoverURL, &t.PreviewURL, &t.RemoteURL, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования трека: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации треков: %w", err)
	}
	return result, nil
}

func (r *trackRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM spotify_songs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления трека: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка удаления трека: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
