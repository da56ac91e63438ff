// cache.go — LRU-кэш списков документов комнат с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tran-matt/room-doc-tracker/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rt_document_cache_hits_total",
		Help: "Общее количество попаданий в кэш списков документов.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rt_document_cache_misses_total",
		Help: "Общее количество промахов кэша списков документов.",
	})
)

// DocumentCache — кэш списков документов по ID комнаты.
// Фильтр по статусу запрашивает документы каждой комнаты,
// кэш снимает повторную нагрузку при смене фильтра и поиска.
// Любая запись документа инвалидирует запись его комнаты.
type DocumentCache struct {
	cache *expirable.LRU[string, []*model.Document]
}

// NewDocumentCache создаёт кэш на maxSize комнат с временем жизни ttl.
func NewDocumentCache(maxSize int, ttl time.Duration) *DocumentCache {
	return &DocumentCache{
		cache: expirable.NewLRU[string, []*model.Document](maxSize, nil, ttl),
	}
}

// Get возвращает копию списка документов комнаты.
// Обновляет Prometheus-метрики hit/miss.
func (c *DocumentCache) Get(roomID string) ([]*model.Document, bool) {
	docs, ok := c.cache.Get(roomID)
	if !ok {
		cacheMissesTotal.Inc()
		return nil, false
	}
	cacheHitsTotal.Inc()
	return slices.Clone(docs), true
}

// Set сохраняет список документов комнаты.
func (c *DocumentCache) Set(roomID string, docs []*model.Document) {
	c.cache.Add(roomID, slices.Clone(docs))
}

// Invalidate удаляет запись комнаты.
func (c *DocumentCache) Invalidate(roomID string) {
	c.cache.Remove(roomID)
}

// Len возвращает количество комнат в кэше.
func (c *DocumentCache) Len() int {
	return c.cache.Len()
}
