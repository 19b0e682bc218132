package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RichardoC/todo-agent/internal/config"
	"github.com/RichardoC/todo-agent/internal/models"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// Redis keeps the window in a list per session so it survives restarts
// when the same session id is reused.
type Redis struct {
	client      *redis.Client
	key         string
	sessionID   string
	ttl         time.Duration
	maxMessages int
	maxTokens   int
	counter     Counter
}

// NewRedis connects to redis and binds the store to sessionID. An empty
// sessionID starts a fresh session.
func NewRedis(ctx context.Context, cfg config.HistoryConfig, sessionID string, counter Counter) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
	}
	return newRedis(client, cfg, sessionID, counter), nil
}

func newRedis(client *redis.Client, cfg config.HistoryConfig, sessionID string, counter Counter) *Redis {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &Redis{
		client:      client,
		key:         fmt.Sprintf("%s:%s", cfg.Redis.KeyPrefix, sessionID),
		sessionID:   sessionID,
		ttl:         cfg.Redis.TTL,
		maxMessages: cfg.MaxMessages,
		maxTokens:   cfg.MaxTokens,
		counter:     counter,
	}
}

func (r *Redis) SessionID() string {
	return r.sessionID
}

func (r *Redis) Append(ctx context.Context, msgs ...models.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]any, 0, len(msgs))
	for _, msg := range msgs {
		b, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("encode history message: %w", err)
		}
		values = append(values, b)
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, r.key, values...)
		if r.maxMessages > 0 {
			pipe.LTrim(ctx, r.key, int64(-r.maxMessages), -1)
		}
		if r.ttl > 0 {
			pipe.Expire(ctx, r.key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (r *Redis) Messages(ctx context.Context) ([]models.Message, error) {
	raw, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load history: %w", err)
	}
	msgs := make([]models.Message, 0, len(raw))
	for _, item := range raw {
		var msg models.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("decode history message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return window(msgs, r.maxTokens, r.counter), nil
}

// Clear drops the session's window.
func (r *Redis) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
