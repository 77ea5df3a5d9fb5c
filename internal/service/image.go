// image.go — сервис изображений: загрузка плиток и фона бокса, выдача содержимого и метаданных.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/boxstore/internal/domain/model"
	"github.com/bigkaa/boxstore/internal/repository"
)

// uploadsTotal — счётчик загрузок по виду и результату.
var uploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "boxstore_uploads_total",
		Help: "Общее количество загрузок изображений.",
	},
	[]string{"kind", "result"},
)

// defaultBackgroundMIME — тип фона, если определить его не удалось.
const defaultBackgroundMIME = "image/jpeg"

// UploadParams — параметры загрузки изображения.
type UploadParams struct {
	Data             []byte
	OriginalFilename string
	DeclaredMIME     string
	BoxID            string
}

// UploadResult — результат загрузки изображения.
type UploadResult struct {
	ImageID      string
	BoxID        string
	DetectedMIME string
}

// ImageService — бизнес-логика изображений.
type ImageService struct {
	images      repository.ImageRepository
	backgrounds repository.BackgroundRepository
	detector    *Detector
	cache       *MetadataCache
	logger      *slog.Logger
}

// NewImageService создаёт сервис изображений.
func NewImageService(
	images repository.ImageRepository,
	backgrounds repository.BackgroundRepository,
	detector *Detector,
	cache *MetadataCache,
	logger *slog.Logger,
) *ImageService {
	return &ImageService{
		images:      images,
		backgrounds: backgrounds,
		detector:    detector,
		cache:       cache,
		logger:      logger.With(slog.String("component", "image_service")),
	}
}

// StoreImage определяет тип файла и сохраняет изображение в бокс.
// text/* — MediaError{ErrWrongEndpoint}, прочие не-image типы — MediaError{ErrUnsupportedMedia}.
func (s *ImageService) StoreImage(ctx context.Context, p UploadParams) (*UploadResult, error) {
	if strings.TrimSpace(p.BoxID) == "" {
		return nil, ErrBoxIDRequired
	}

	detected, layer := s.detector.Detect(DetectInput{
		Data:             p.Data,
		OriginalFilename: p.OriginalFilename,
		DeclaredMIME:     p.DeclaredMIME,
	})

	switch {
	case strings.HasPrefix(detected, "image/"):
	case strings.HasPrefix(detected, "text/"):
		uploadsTotal.WithLabelValues("image", "wrong_endpoint").Inc()
		return nil, &MediaError{Err: ErrWrongEndpoint, DetectedMIME: detected}
	default:
		uploadsTotal.WithLabelValues("image", "unsupported").Inc()
		return nil, &MediaError{Err: ErrUnsupportedMedia, DetectedMIME: detected}
	}

	img := &model.Image{
		ID:          uuid.New().String(),
		BoxID:       p.BoxID,
		Data:        p.Data,
		ContentType: detected,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.images.Create(ctx, img); err != nil {
		uploadsTotal.WithLabelValues("image", "error").Inc()
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("сохранение изображения: %w", err)
	}

	uploadsTotal.WithLabelValues("image", "success").Inc()
	s.logger.Info("Изображение загружено",
		slog.String("image_id", img.ID),
		slog.String("box_id", img.BoxID),
		slog.String("content_type", detected),
		slog.String("detected_by", layer),
		slog.Int("size", len(p.Data)),
	)

	return &UploadResult{ImageID: img.ID, BoxID: img.BoxID, DetectedMIME: detected}, nil
}

// GetImage возвращает изображение с содержимым.
func (s *ImageService) GetImage(ctx context.Context, imageID string) (*model.Image, error) {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение изображения: %w", err)
	}
	return img, nil
}

// GetImageMetadata возвращает метаданные изображения через кэш.
func (s *ImageService) GetImageMetadata(ctx context.Context, imageID string) (*model.ImageMetadata, error) {
	return s.cache.Load(ctx, imageID, s.fetchMetadata)
}

func (s *ImageService) fetchMetadata(ctx context.Context, imageID string) (*model.ImageMetadata, error) {
	meta, err := s.images.GetMetadata(ctx, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение метаданных изображения: %w", err)
	}
	return meta, nil
}

// StoreBackground сохраняет фон бокса, заменяя предыдущий.
// Тип файла не проверяется: определённый image/* сохраняется как есть, иначе image/jpeg.
func (s *ImageService) StoreBackground(ctx context.Context, p UploadParams) (*model.BackgroundImage, error) {
	if strings.TrimSpace(p.BoxID) == "" {
		return nil, ErrBoxIDRequired
	}

	contentType, _ := s.detector.Detect(DetectInput{
		Data:             p.Data,
		OriginalFilename: p.OriginalFilename,
		DeclaredMIME:     p.DeclaredMIME,
	})
	if !strings.HasPrefix(contentType, "image/") {
		contentType = defaultBackgroundMIME
	}

	bg := &model.BackgroundImage{
		BoxID:       p.BoxID,
		Data:        p.Data,
		ContentType: contentType,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.backgrounds.Upsert(ctx, bg); err != nil {
		uploadsTotal.WithLabelValues("background", "error").Inc()
		return nil, fmt.Errorf("сохранение фона: %w", err)
	}

	uploadsTotal.WithLabelValues("background", "success").Inc()
	s.logger.Info("Фон бокса загружен",
		slog.String("box_id", bg.BoxID),
		slog.String("content_type", contentType),
		slog.Int("size", len(p.Data)),
	)
	return bg, nil
}

// GetBackground возвращает фон бокса.
func (s *ImageService) GetBackground(ctx context.Context, boxID string) (*model.BackgroundImage, error) {
	bg, err := s.backgrounds.GetByBoxID(ctx, boxID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение фона: %w", err)
	}
	return bg, nil
}
