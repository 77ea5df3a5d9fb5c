package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/bigkaa/boxstore/internal/catalog"
	"github.com/bigkaa/boxstore/internal/domain/model"
	"github.com/bigkaa/boxstore/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock repositories ---

type mockBoxRepo struct {
	createFn func(ctx context.Context, boxID string) error
	listFn   func(ctx context.Context) ([]model.BoxSummary, error)
}

func (m *mockBoxRepo) Create(ctx context.Context, boxID string) error {
	if m.createFn != nil {
		return m.createFn(ctx, boxID)
	}
	return nil
}

func (m *mockBoxRepo) ListWithImages(ctx context.Context) ([]model.BoxSummary, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.BoxSummary{}, nil
}

type mockImageRepo struct {
	createFn      func(ctx context.Context, img *model.Image) error
	getByIDFn     func(ctx context.Context, imageID string) (*model.Image, error)
	getMetadataFn func(ctx context.Context, imageID string) (*model.ImageMetadata, error)
}

func (m *mockImageRepo) Create(ctx context.Context, img *model.Image) error {
	if m.createFn != nil {
		return m.createFn(ctx, img)
	}
	return nil
}

func (m *mockImageRepo) GetByID(ctx context.Context, imageID string) (*model.Image, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, imageID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockImageRepo) GetMetadata(ctx context.Context, imageID string) (*model.ImageMetadata, error) {
	if m.getMetadataFn != nil {
		return m.getMetadataFn(ctx, imageID)
	}
	return nil, repository.ErrNotFound
}

type mockBackgroundRepo struct {
	upsertFn func(ctx context.Context, bg *model.BackgroundImage) error
	getFn    func(ctx context.Context, boxID string) (*model.BackgroundImage, error)
}

func (m *mockBackgroundRepo) Upsert(ctx context.Context, bg *model.BackgroundImage) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, bg)
	}
	return nil
}

func (m *mockBackgroundRepo) GetByBoxID(ctx context.Context, boxID string) (*model.BackgroundImage, error) {
	if m.getFn != nil {
		return m.getFn(ctx, boxID)
	}
	return nil, repository.ErrNotFound
}

type mockTextRepo struct {
	createFn func(ctx context.Context, t *model.Text) error
	listFn   func(ctx context.Context, boxID string) ([]*model.Text, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (m *mockTextRepo) Create(ctx context.Context, t *model.Text) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	t.ID = 1
	return nil
}

func (m *mockTextRepo) ListByBox(ctx context.Context, boxID string) ([]*model.Text, error) {
	if m.listFn != nil {
		return m.listFn(ctx, boxID)
	}
	return []*model.Text{}, nil
}

func (m *mockTextRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockTrackRepo struct {
	createFn func(ctx context.Context, t *model.Track) error
	listFn   func(ctx context.Context, boxID string) ([]*model.Track, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (m *mockTrackRepo) Create(ctx context.Context, t *model.Track) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	t.ID = 1
	return nil
}

func (m *mockTrackRepo) ListByBox(ctx context.Context, boxID string) ([]*model.Track, error) {
	if m.listFn != nil {
		return m.listFn(ctx, boxID)
	}
	return []*model.Track{}, nil
}

func (m *mockTrackRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Mock catalog ---

type mockCatalog struct {
	searchFn  func(ctx context.Context, query string, limit int) ([]json.RawMessage, error)
	getByIDFn func(ctx context.Context, remoteID string) (*catalog.Track, error)
}

func (m *mockCatalog) Search(ctx context.Context, query string, limit int) ([]json.RawMessage, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return []json.RawMessage{}, nil
}

func (m *mockCatalog) GetByID(ctx context.Context, remoteID string) (*catalog.Track, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, remoteID)
	}
	return nil, catalog.ErrRequest
}
