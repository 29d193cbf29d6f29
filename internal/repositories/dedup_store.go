package repositories

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/models"
)

// DedupStore is the idempotency gate for inbound provider messages.
type DedupStore interface {
	// MarkProcessed atomically records the provider message id. It returns
	// true when this call was the first to record it; a concurrent or
	// earlier duplicate returns false. Check-then-write is deliberately not
	// offered: the single conditional write closes the double-reply race.
	MarkProcessed(ctx context.Context, messageID string) (bool, error)
}

// --- Postgres-backed store: insert-if-absent via the primary key ---

type gormDedupStore struct {
	db *gorm.DB
}

func NewGormDedupStore(db *gorm.DB) DedupStore {
	return &gormDedupStore{db: db}
}

func (s *gormDedupStore) MarkProcessed(ctx context.Context, messageID string) (bool, error) {
	marker := models.ProcessedMessage{ID: messageID}
	err := s.db.WithContext(ctx).Create(&marker).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	return false, err
}

// --- Redis-backed store: SET NX with expiry ---

// dedupTTL bounds marker retention; the provider stops retrying long before.
const dedupTTL = 7 * 24 * time.Hour

type redisDedupStore struct {
	client *goredis.Client
	prefix string
}

func NewRedisDedupStore(client *goredis.Client) DedupStore {
	return &redisDedupStore{client: client, prefix: "processed_messages:"}
}

func (s *redisDedupStore) MarkProcessed(ctx context.Context, messageID string) (bool, error) {
	return s.client.SetNX(ctx, s.prefix+messageID, 1, dedupTTL).Result()
}
