// Пакет model — доменные модели boxstore.
// Box, Image, BackgroundImage — маппинг таблиц box_ids, images, background_images.
package model

import "time"

// Box — бокс, контейнер элементов. Идентификатор задаётся клиентом.
type Box struct {
	ID string
}

// BoxSummary — бокс со списком идентификаторов его изображений.
type BoxSummary struct {
	BoxID    string
	ImageIDs []string
}

// Image — изображение-плитка бокса.
type Image struct {
	// ID — UUID, генерируется сервером
	ID string
	// BoxID — бокс, к которому привязано изображение (существование не проверяется)
	BoxID string
	// Data — содержимое файла целиком
	Data []byte
	// ContentType — MIME-тип, определённый при загрузке (image/*)
	ContentType string
	// CreatedAt — время загрузки (UTC)
	CreatedAt time.Time
}

// ImageMetadata — метаданные изображения без содержимого.
type ImageMetadata struct {
	ID          string
	BoxID       string
	ContentType string
	Size        int64
	CreatedAt   time.Time
}

// BackgroundImage — фоновое изображение бокса. Не более одного на бокс.
type BackgroundImage struct {
	BoxID       string
	Data        []byte
	ContentType string
	UpdatedAt   time.Time
}
