package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bigkaa/boxstore/internal/domain/model"
	"github.com/bigkaa/boxstore/internal/repository"
)

// BoxService — бизнес-логика реестра боксов.
type BoxService struct {
	repo   repository.BoxRepository
	logger *slog.Logger
}

// NewBoxService создаёт сервис боксов.
func NewBoxService(repo repository.BoxRepository, logger *slog.Logger) *BoxService {
	return &BoxService{
		repo:   repo,
		logger: logger.With(slog.String("component", "box_service")),
	}
}

// CreateBox регистрирует бокс. ErrConflict — идентификатор уже занят.
func (s *BoxService) CreateBox(ctx context.Context, boxID string) error {
	if strings.TrimSpace(boxID) == "" {
		return ErrBoxIDRequired
	}

	if err := s.repo.Create(ctx, boxID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrConflict
		}
		return fmt.Errorf("создание бокса: %w", err)
	}

	s.logger.Info("Бокс создан", slog.String("box_id", boxID))
	return nil
}

// ListBoxes возвращает все боксы с идентификаторами их изображений.
func (s *BoxService) ListBoxes(ctx context.Context) ([]model.BoxSummary, error) {
	boxes, err := s.repo.ListWithImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("список боксов: %w", err)
	}
	return boxes, nil
}
