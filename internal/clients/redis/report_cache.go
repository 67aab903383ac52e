package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mediccompanion/backend/internal/domain"
	"github.com/mediccompanion/backend/internal/platform/envutil"
	"github.com/mediccompanion/backend/internal/platform/logger"
)

// ReportCache holds recently computed adherence reports so dashboard polling
// does not recompute the window on every request. A cache miss or any redis
// failure just falls through to recomputation.
type ReportCache interface {
	Get(ctx context.Context, patientID uuid.UUID, windowDays int) (*domain.AdherenceReport, bool)
	Set(ctx context.Context, patientID uuid.UUID, windowDays int, report *domain.AdherenceReport)
	Invalidate(ctx context.Context, patientID uuid.UUID)
	Close() error
}

type reportCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewReportCache(log *logger.Logger) (ReportCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := time.Duration(envutil.Int("REPORT_CACHE_TTL_SECONDS", 120)) * time.Second
	return &reportCache{
		log: log.With("client", "ReportCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func reportKey(patientID uuid.UUID, windowDays int) string {
	return fmt.Sprintf("adherence:report:%s:%d", patientID, windowDays)
}

func (c *reportCache) Get(ctx context.Context, patientID uuid.UUID, windowDays int) (*domain.AdherenceReport, bool) {
	raw, err := c.rdb.Get(ctx, reportKey(patientID, windowDays)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Warn("Report cache read failed", "error", err)
		return nil, false
	}
	var report domain.AdherenceReport
	if err := json.Unmarshal(raw, &report); err != nil {
		c.log.Warn("Report cache entry undecodable", "error", err)
		return nil, false
	}
	return &report, true
}

func (c *reportCache) Set(ctx context.Context, patientID uuid.UUID, windowDays int, report *domain.AdherenceReport) {
	raw, err := json.Marshal(report)
	if err != nil {
		c.log.Warn("Report cache encode failed", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, reportKey(patientID, windowDays), raw, c.ttl).Err(); err != nil {
		c.log.Warn("Report cache write failed", "error", err)
	}
}

// Invalidate drops every cached window for the patient after a dose mark.
func (c *reportCache) Invalidate(ctx context.Context, patientID uuid.UUID) {
	pattern := fmt.Sprintf("adherence:report:%s:*", patientID)
	iter := c.rdb.Scan(ctx, 0, pattern, 50).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			c.log.Warn("Report cache invalidate failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("Report cache scan failed", "error", err)
	}
}

func (c *reportCache) Close() error {
	return c.rdb.Close()
}
