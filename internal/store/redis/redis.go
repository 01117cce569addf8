package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/diogoX451/synthctl/internal/store"
	"github.com/diogoX451/synthctl/pkg/types"
	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ store.TranscriptStore = (*RedisStore)(nil)

type Config struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	DefaultTTL time.Duration
}

func New(cfg Config) (*RedisStore, error) {
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = 24 * time.Hour
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisStore{
		client: client,
		ttl:    cfg.DefaultTTL,
	}, nil
}

// Chaves Redis:
// synth:session:{id}:transcript -> lista de TranscriptEntry (json)
// synth:session:{id}:aliases -> hash nome -> AliasEvent (json)
// synth:sessions -> set de session ids

func (r *RedisStore) transcriptKey(id types.SessionID) string {
	return fmt.Sprintf("synth:session:%s:transcript", id)
}

func (r *RedisStore) aliasesKey(id types.SessionID) string {
	return fmt.Sprintf("synth:session:%s:aliases", id)
}

func (r *RedisStore) sessionsKey() string {
	return "synth:sessions"
}

func (r *RedisStore) AppendEntry(ctx context.Context, session types.SessionID, entry types.TranscriptEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	key := r.transcriptKey(session)
	pipe := r.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, r.ttl)
	pipe.SAdd(ctx, r.sessionsKey(), string(session))
	_, err = pipe.Exec(ctx)
	return err
}

// Entries usa a semântica de LRANGE (stop -1 = até o fim)
func (r *RedisStore) Entries(ctx context.Context, session types.SessionID, start, stop int64) ([]types.TranscriptEntry, error) {
	raw, err := r.client.LRange(ctx, r.transcriptKey(session), start, stop).Result()
	if err != nil {
		return nil, err
	}

	result := make([]types.TranscriptEntry, 0, len(raw))
	for _, item := range raw {
		var entry types.TranscriptEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		result = append(result, entry)
	}
	return result, nil
}

func (r *RedisStore) SaveAlias(ctx context.Context, session types.SessionID, alias types.AliasEvent) error {
	if alias.Name == "" {
		return fmt.Errorf("alias name required")
	}
	data, err := json.Marshal(alias)
	if err != nil {
		return fmt.Errorf("marshal alias: %w", err)
	}

	key := r.aliasesKey(session)
	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, alias.Name, data)
	pipe.Expire(ctx, key, r.ttl)
	pipe.SAdd(ctx, r.sessionsKey(), string(session))
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisStore) Aliases(ctx context.Context, session types.SessionID) ([]types.AliasEvent, error) {
	raw, err := r.client.HGetAll(ctx, r.aliasesKey(session)).Result()
	if err != nil {
		return nil, err
	}

	result := make([]types.AliasEvent, 0, len(raw))
	for _, item := range raw {
		var alias types.AliasEvent
		if err := json.Unmarshal([]byte(item), &alias); err != nil {
			continue
		}
		result = append(result, alias)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *RedisStore) ListSessions(ctx context.Context) ([]types.SessionID, error) {
	ids, err := r.client.SMembers(ctx, r.sessionsKey()).Result()
	if err != nil {
		return nil, err
	}

	result := make([]types.SessionID, len(ids))
	for i, id := range ids {
		result[i] = types.SessionID(id)
	}
	return result, nil
}

// SetTTL renova o tempo de vida das chaves da sessão
func (r *RedisStore) SetTTL(ctx context.Context, session types.SessionID, ttl time.Duration) error {
	pipe := r.client.Pipeline()
	pipe.Expire(ctx, r.transcriptKey(session), ttl)
	pipe.Expire(ctx, r.aliasesKey(session), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// DeleteSession remove tudo
func (r *RedisStore) DeleteSession(ctx context.Context, session types.SessionID) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.transcriptKey(session), r.aliasesKey(session))
	pipe.SRem(ctx, r.sessionsKey(), string(session))
	_, err := pipe.Exec(ctx)
	return err
}

// Close fecha conexão
func (r *RedisStore) Close() error {
	return r.client.Close()
}
