// Пакет service — бизнес-логика boxstore.
package service

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/boxstore/internal/domain/model"
)

var metadataLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "boxstore_metadata_cache_lookups_total",
	Help: "Обращения к кэшу метаданных изображений по результату (hit, miss, error).",
}, []string{"result"})

// MetadataFetcher загружает метаданные изображения из хранилища.
type MetadataFetcher func(ctx context.Context, imageID string) (*model.ImageMetadata, error)

// MetadataCache — кэш метаданных изображений (expirable LRU).
// Изображение после загрузки не меняется, поэтому запись живёт до TTL
// или вытеснения. Хранятся значения: вызывающий получает копию
// и не может испортить закэшированную запись.
type MetadataCache struct {
	lru *expirable.LRU[string, model.ImageMetadata]
}

// NewMetadataCache создаёт кэш на size записей с временем жизни ttl.
func NewMetadataCache(size int, ttl time.Duration) *MetadataCache {
	return &MetadataCache{lru: expirable.NewLRU[string, model.ImageMetadata](size, nil, ttl)}
}

// Load возвращает метаданные из кэша, при промахе — через fetch.
// Ошибки fetch (в том числе «не найдено») не кэшируются: изображение
// может появиться сразу после неудачного запроса.
func (c *MetadataCache) Load(ctx context.Context, imageID string, fetch MetadataFetcher) (*model.ImageMetadata, error) {
	if meta, ok := c.lru.Get(imageID); ok {
		metadataLookupsTotal.WithLabelValues("hit").Inc()
		return &meta, nil
	}

	meta, err := fetch(ctx, imageID)
	if err != nil {
		metadataLookupsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metadataLookupsTotal.WithLabelValues("miss").Inc()

	c.lru.Add(imageID, *meta)
	return meta, nil
}

// Len — число записей в кэше.
func (c *MetadataCache) Len() int {
	return c.lru.Len()
}
