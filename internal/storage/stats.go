package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"qrmenu/internal/domain"
)

// StatsStore keeps per-restaurant edit aggregates in Redis. Daily totals
// live in a sorted set per day, rolling details in a hash per restaurant.
type StatsStore struct {
	Client *redis.Client
}

func NewStatsStore(client *redis.Client) *StatsStore {
	return &StatsStore{Client: client}
}

func dailyKey(day time.Time) string {
	return fmt.Sprintf("menuedits:daily:%s", day.Format("2006-01-02"))
}

func statsKey(restaurantID string) string {
	return "menustats:" + restaurantID
}

func (s *StatsStore) RecordEdit(ctx context.Context, event domain.MenuEvent) error {
	day := dailyKey(event.Timestamp)
	if err := s.Client.ZIncrBy(ctx, day, 1, event.RestaurantID).Err(); err != nil {
		return err
	}
	s.Client.Expire(ctx, day, 30*24*time.Hour)

	key := statsKey(event.RestaurantID)
	if err := s.Client.HIncrBy(ctx, key, "edits", 1).Err(); err != nil {
		return err
	}
	return s.Client.HSet(ctx, key, map[string]interface{}{
		"last_edit": event.Timestamp.Unix(),
		"last_type": event.Type,
	}).Err()
}

func (s *StatsStore) GetStats(ctx context.Context, restaurantID string) (map[string]string, error) {
	return s.Client.HGetAll(ctx, statsKey(restaurantID)).Result()
}

// DailyEdits returns today's edit count for one restaurant; zero when the
// restaurant has not been touched that day.
func (s *StatsStore) DailyEdits(ctx context.Context, restaurantID string, day time.Time) (float64, error) {
	count, err := s.Client.ZScore(ctx, dailyKey(day), restaurantID).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}
