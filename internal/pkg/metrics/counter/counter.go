package counter

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tablescout/tablescout/app/models"
	"github.com/tablescout/tablescout/internal/pkg/cache"
	"github.com/tablescout/tablescout/internal/pkg/database"
)

const (
	searchCountersKey = "usage:counters:search"
	viewCountersKey   = "usage:counters:restaurant_views"
)

// AddSearch increments the pending search counter for a user in Redis
func AddSearch(userID uint) error {
	return incr(searchCountersKey, userID)
}

// AddRestaurantView increments the pending restaurant view counter for a user in Redis
func AddRestaurantView(userID uint) error {
	return incr(viewCountersKey, userID)
}

func incr(redisKey string, userID uint) error {
	ctx := context.Background()
	field := fmt.Sprintf("%d:%s", userID, models.UsageDay(time.Now()))
	return cache.GetClient().HIncrBy(ctx, redisKey, field, 1).Err()
}

// PendingToday returns the not-yet-flushed count for a user and kind.
func PendingToday(userID uint, kind string) int64 {
	ctx := context.Background()
	field := fmt.Sprintf("%d:%s", userID, models.UsageDay(time.Now()))
	val, err := cache.GetClient().HGet(ctx, keyForKind(kind), field).Int64()
	if err != nil {
		return 0
	}
	return val
}

// StartFlushLoop flushes pending counters every interval until ctx is done.
func StartFlushLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := FlushAll(); err != nil {
				log.Printf("usage counter flush failed: %v", err)
			}
		}
	}
}

// FlushAll flushes all pending usage counters to the database
func FlushAll() error {
	if err := flushHashToUsage(searchCountersKey, models.UsageKindSearch); err != nil {
		return err
	}
	return flushHashToUsage(viewCountersKey, models.UsageKindRestaurantView)
}

// flushHashToUsage drains a Redis hash atomically and applies batched
// increments to the usage_records table. Uses RENAME to a temporary key for
// atomic drain without losing in-flight increments.
func flushHashToUsage(redisKey, kind string) error {
	ctx := context.Background()
	rdb := cache.GetClient()

	tmpKey := fmt.Sprintf("%s:tmp:%d", redisKey, time.Now().UnixNano())
	if err := rdb.Do(ctx, "RENAME", redisKey, tmpKey).Err(); err != nil {
		// If key does not exist, nothing to flush
		if strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		if err.Error() == "redis: nil" {
			return nil
		}
		return err
	}
	defer rdb.Del(ctx, tmpKey)

	fields, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	db := database.GetDB()
	for field, raw := range fields {
		parts := strings.SplitN(field, ":", 2)
		if len(parts) != 2 {
			continue
		}
		userID, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			continue
		}
		inc, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || inc <= 0 {
			continue
		}

		record := models.UsageRecord{
			UserID: uint(userID),
			Kind:   kind,
			Day:    parts[1],
			Count:  inc,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "kind"},
				{Name: "day"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"count": gorm.Expr("count + ?", inc),
			}),
		}).Create(&record).Error; err != nil {
			return err
		}
	}
	return nil
}

// CountToday returns the flushed + pending count for a user and kind today.
func CountToday(userID uint, kind string) (int64, error) {
	var flushed int64
	err := database.GetDB().Model(&models.UsageRecord{}).
		Select("COALESCE(SUM(count), 0)").
		Where("user_id = ? AND kind = ? AND day = ?", userID, kind, models.UsageDay(time.Now())).
		Scan(&flushed).Error
	if err != nil {
		return 0, err
	}
	return flushed + PendingToday(userID, kind), nil
}

func keyForKind(kind string) string {
	if kind == models.UsageKindRestaurantView {
		return viewCountersKey
	}
	return searchCountersKey
}
