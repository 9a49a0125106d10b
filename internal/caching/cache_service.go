package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentledger/internal/models"
	"rentledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "rentledger:report"

// ReportCache stores rendered reports per organization.
type ReportCache interface {
	// GetReport decodes the cached value into dest. A miss returns false, nil.
	GetReport(ctx context.Context, key string, dest any) (bool, error)
	SetReport(ctx context.Context, key string, value any, ttl time.Duration) error
	// InvalidateOrgReports drops every cached report for the organization.
	InvalidateOrgReports(ctx context.Context, orgID uuid.UUID) error
	Ping(ctx context.Context) error
}

// ReportKey builds the cache key for one report. Extra parts, such as window
// bounds, are appended in order.
func ReportKey(orgID uuid.UUID, kind models.ReportKind, parts ...string) string {
	segments := append([]string{keyPrefix, orgID.String(), string(kind)}, parts...)
	return strings.Join(segments, ":")
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) ReportCache {
	// Accept redis://host:port as well as host:port
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		logger.Log.WithError(pingErr).WithField("addr", parsedAddr).Warn("redis ping failed on initialization")
	} else {
		logger.Log.WithField("addr", parsedAddr).Debug("redis connection established")
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetReport(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode cached report %s: %w", key, err)
	}
	return true, nil
}

func (r *redisCacheService) SetReport(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) InvalidateOrgReports(ctx context.Context, orgID uuid.UUID) error {
	pattern := fmt.Sprintf("%s:%s:*", keyPrefix, orgID.String())
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

type noopCache struct{}

// NewNoopCache returns a cache that never hits. Used when Redis is not configured.
func NewNoopCache() ReportCache {
	return noopCache{}
}

func (noopCache) GetReport(context.Context, string, any) (bool, error)         { return false, nil }
func (noopCache) SetReport(context.Context, string, any, time.Duration) error { return nil }
func (noopCache) InvalidateOrgReports(context.Context, uuid.UUID) error       { return nil }
func (noopCache) Ping(context.Context) error                                  { return nil }
