package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bigkaa/boxstore/internal/domain/model"
	"github.com/bigkaa/boxstore/internal/repository"
)

// TextService — бизнес-логика текстовых заметок.
type TextService struct {
	repo   repository.TextRepository
	logger *slog.Logger
}

// NewTextService создаёт сервис текстов.
func NewTextService(repo repository.TextRepository, logger *slog.Logger) *TextService {
	return &TextService{
		repo:   repo,
		logger: logger.With(slog.String("component", "text_service")),
	}
}

// SaveText сохраняет текст. Длина считается в символах, не в байтах.
func (s *TextService) SaveText(ctx context.Context, boxID, content string) (*model.Text, error) {
	if strings.TrimSpace(boxID) == "" {
		return nil, ErrBoxIDRequired
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrTextEmpty
	}
	if utf8.RuneCountInString(content) > model.MaxTextLength {
		return nil, ErrTextTooLong
	}

	t := &model.Text{
		BoxID:     boxID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("сохранение текста: %w", err)
	}

	s.logger.Debug("Текст сохранён",
		slog.Int64("text_id", t.ID),
		slog.String("box_id", boxID),
	)
	return t, nil
}

// ListTexts возвращает тексты бокса, новые первыми.
func (s *TextService) ListTexts(ctx context.Context, boxID string) ([]*model.Text, error) {
	texts, err := s.repo.ListByBox(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("список текстов: %w", err)
	}
	return texts, nil
}

// DeleteText удаляет текст по идентификатору.
func (s *TextService) DeleteText(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление текста: %w", err)
	}
	s.logger.Debug("Текст удалён", slog.Int64("text_id", id))
	return nil
}
