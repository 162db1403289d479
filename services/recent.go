package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RecentPractice lưu danh sách quiz ôn tập gần đây theo từng user trên
// redis sorted set: score = thời điểm ôn, nên ôn lại một quiz cũ tự
// động đẩy nó lên đầu; danh sách cắt ở RecentLimit phần tử.
type RecentPractice struct {
	rdb   *redis.Client
	limit int64
}

const RecentLimit = 20

func NewRecentPractice(rdb *redis.Client) *RecentPractice {
	return &RecentPractice{rdb: rdb, limit: RecentLimit}
}

func (r *RecentPractice) key(userID string) string {
	return "recent:" + userID
}

// Record ghi nhận một lượt ôn tập. Idempotent về membership: quiz đã có
// trong danh sách chỉ đổi vị trí, không nhân đôi.
func (r *RecentPractice) Record(ctx context.Context, userID, quizID string) error {
	key := r.key(userID)
	pipe := r.rdb.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(time.Now().UnixMilli()),
		Member: quizID,
	})
	// Giữ lại limit phần tử mới nhất
	pipe.ZRemRangeByRank(ctx, key, 0, -(r.limit + 1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("ghi lịch sử ôn tập thất bại: %w", err)
	}
	return nil
}

// List trả các quiz id theo thứ tự ôn gần nhất trước
func (r *RecentPractice) List(ctx context.Context, userID string) ([]string, error) {
	ids, err := r.rdb.ZRevRange(ctx, r.key(userID), 0, r.limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("đọc lịch sử ôn tập thất bại: %w", err)
	}
	return ids, nil
}
