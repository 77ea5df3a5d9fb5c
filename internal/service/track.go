// track.go — сохранение треков внешнего каталога в боксы и сквозные запросы к каталогу.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bigkaa/boxstore/internal/catalog"
	"github.com/bigkaa/boxstore/internal/domain/model"
	"github.com/bigkaa/boxstore/internal/repository"
)

// Границы limit для поиска в каталоге.
const (
	DefaultSearchLimit = 10
	MinSearchLimit     = 1
	MaxSearchLimit     = 50
)

// Catalog — операции внешнего каталога, нужные сервису треков.
// Реализуется *catalog.Client.
type Catalog interface {
	Search(ctx context.Context, query string, limit int) ([]json.RawMessage, error)
	GetByID(ctx context.Context, remoteID string) (*catalog.Track, error)
}

// TrackService — бизнес-логика треков.
type TrackService struct {
	repo    repository.TrackRepository
	catalog Catalog
	logger  *slog.Logger
}

// NewTrackService создаёт сервис треков.
func NewTrackService(repo repository.TrackRepository, cat Catalog, logger *slog.Logger) *TrackService {
	return &TrackService{
		repo:    repo,
		catalog: cat,
		logger:  logger.With(slog.String("component", "track_service")),
	}
}

// SaveTrack запрашивает трек в каталоге и сохраняет снимок его полей в бокс.
func (s *TrackService) SaveTrack(ctx context.Context, boxID, remoteID string) (*model.Track, error) {
	if strings.TrimSpace(boxID) == "" {
		return nil, ErrBoxIDRequired
	}
	if strings.TrimSpace(remoteID) == "" {
		return nil, ErrTrackIDRequired
	}

	remote, err := s.catalog.GetByID(ctx, remoteID)
	if err != nil {
		return nil, fmt.Errorf("получение трека %s из каталога: %w", remoteID, err)
	}

	track, err := extractTrack(remote)
	if err != nil {
		s.logger.Warn("Неполный ответ каталога",
			slog.String("spotify_id", remoteID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	track.BoxID = boxID
	track.RemoteID = remoteID
	track.CreatedAt = time.Now().UTC()

	if err := s.repo.Create(ctx, track); err != nil {
		return nil, fmt.Errorf("сохранение трека: %w", err)
	}

	s.logger.Info("Трек сохранён",
		slog.Int64("track_id", track.ID),
		slog.String("box_id", boxID),
		slog.String("spotify_id", remoteID),
	)
	return track, nil
}

// extractTrack извлекает сохраняемые поля из ответа каталога.
// Отсутствие любого обязательного поля — ErrCatalogShape.
func extractTrack(t *catalog.Track) (*model.Track, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: пустой ответ", ErrCatalogShape)
	}

	missing := func(field string) error {
		return fmt.Errorf("%w: %s", ErrCatalogShape, field)
	}

	if t.Name == "" {
		return nil, missing("name")
	}
	if len(t.Artists) == 0 || t.Artists[0].Name == "" {
		return nil, missing("artists[0].name")
	}
	if t.Album.Name == "" {
		return nil, missing("album.name")
	}
	if len(t.Album.Images) == 0 || t.Album.Images[0].URL == "" {
		return nil, missing("album.images[0].url")
	}
	if t.ExternalURLs.Spotify == "" {
		return nil, missing("external_urls.spotify")
	}

	return &model.Track{
		Name:          t.Name,
		Artist:        t.Artists[0].Name,
		Album:         t.Album.Name,
		AlbumCoverURL: t.Album.Images[0].URL,
		PreviewURL:    t.PreviewURL,
		RemoteURL:     t.ExternalURLs.Spotify,
	}, nil
}

// ListTracks возвращает треки бокса, новые первыми.
func (s *TrackService) ListTracks(ctx context.Context, boxID string) ([]*model.Track, error) {
	tracks, err := s.repo.ListByBox(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("список треков: %w", err)
	}
	return tracks, nil
}

// DeleteTrack удаляет сохранённый трек по идентификатору строки.
func (s *TrackService) DeleteTrack(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление трека: %w", err)
	}
	s.logger.Debug("Трек удалён", slog.Int64("track_id", id))
	return nil
}

// Search ищет треки в каталоге. Элементы возвращаются без изменений.
func (s *TrackService) Search(ctx context.Context, query string, limit int) ([]json.RawMessage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrQueryRequired
	}
	if limit < MinSearchLimit || limit > MaxSearchLimit {
		return nil, ErrLimitOutOfRange
	}

	items, err := s.catalog.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("поиск в каталоге: %w", err)
	}
	return items, nil
}

// Song возвращает трек каталога в исходном виде.
func (s *TrackService) Song(ctx context.Context, remoteID string) (json.RawMessage, error) {
	if strings.TrimSpace(remoteID) == "" {
		return nil, ErrTrackIDRequired
	}

	t, err := s.catalog.GetByID(ctx, remoteID)
	if err != nil {
		return nil, fmt.Errorf("получение трека %s из каталога: %w", remoteID, err)
	}
	return t.Raw, nil
}
