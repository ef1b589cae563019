package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bodegapp/backend-go/internal/config"
	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	forecastKeyPrefix     = "forecast:rows"
	forecastScanBatchSize = 100
)

// ForecastCache memoizes computed forecast rows per filter. Imports
// and deletions invalidate the whole prefix.
type ForecastCache interface {
	GetRows(ctx context.Context, filter domain.ForecastFilter) ([]domain.ForecastRow, bool, error)
	SetRows(ctx context.Context, filter domain.ForecastFilter, rows []domain.ForecastRow) error
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisForecastCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) GetRows(ctx context.Context, filter domain.ForecastFilter) ([]domain.ForecastRow, bool, error) {
	key := buildForecastKey(filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var rows []domain.ForecastRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, false, fmt.Errorf("decode forecast cache: %w", err)
	}

	return rows, true, nil
}

func (c *redisForecastCache) SetRows(ctx context.Context, filter domain.ForecastFilter, rows []domain.ForecastRow) error {
	key := buildForecastKey(filter)
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode forecast cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, forecastKeyPrefix, forecastScanBatchSize)
}

func (n *noopForecastCache) GetRows(ctx context.Context, filter domain.ForecastFilter) ([]domain.ForecastRow, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetRows(ctx context.Context, filter domain.ForecastFilter, rows []domain.ForecastRow) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildForecastKey(filter domain.ForecastFilter) string {
	return fmt.Sprintf("%s:%s", forecastKeyPrefix, forecastFilterHash(filter))
}

func forecastFilterHash(filter domain.ForecastFilter) string {
	parts := []string{
		"months=" + strconv.Itoa(filter.Months),
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		parts = append(parts, "search="+search)
	}
	if filter.HideZero {
		parts = append(parts, "hide_zero=1")
	}

	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
