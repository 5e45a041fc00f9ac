// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-s-yu/phaseten/internal/game"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultRoomsKey is the Redis hash holding one JSON summary per room.
	DefaultRoomsKey = "phaseten:rooms"
	// aliveKeyPrefix keys carry the TTL; a hash entry without one is stale.
	aliveKeyPrefix = "phaseten:room:"

	pingTimeout = 5 * time.Second
)

// ConnectRedis opens a client and checks it with a PING.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// RedisDirectory lists rooms in Redis so other processes (a lobby browser, a
// second server) can see them. Entries age out ttl after their last publish,
// which clears rooms left behind by a process that died without removing them.
// A running GameStore republishes on a heartbeat to keep its rooms listed.
type RedisDirectory struct {
	client   *redis.Client
	roomsKey string
	ttl      time.Duration
}

var _ game.Directory = (*RedisDirectory)(nil)

// NewRedisDirectory returns a directory stored under DefaultRoomsKey.
func NewRedisDirectory(client *redis.Client, ttl time.Duration) *RedisDirectory {
	return &RedisDirectory{client: client, roomsKey: DefaultRoomsKey, ttl: ttl}
}

func aliveKey(roomID string) string {
	return aliveKeyPrefix + roomID
}

// Publish stores the summary and refreshes the room's TTL.
func (d *RedisDirectory) Publish(ctx context.Context, summary game.RoomSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal room summary: %w", err)
	}

	_, err = d.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, d.roomsKey, summary.RoomID, data)
		pipe.Set(ctx, aliveKey(summary.RoomID), 1, d.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish room %s: %w", summary.RoomID, err)
	}
	return nil
}

// Remove deletes the room from the directory.
func (d *RedisDirectory) Remove(ctx context.Context, roomID string) error {
	_, err := d.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, d.roomsKey, roomID)
		pipe.Del(ctx, aliveKey(roomID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove room %s: %w", roomID, err)
	}
	return nil
}

// List returns every live room, oldest first. Stale entries are skipped and
// pruned from the hash.
func (d *RedisDirectory) List(ctx context.Context) ([]game.RoomSummary, error) {
	entries, err := d.client.HGetAll(ctx, d.roomsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", d.roomsKey, err)
	}
	if len(entries) == 0 {
		return []game.RoomSummary{}, nil
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	checks := make([]*redis.IntCmd, len(ids))
	_, err = d.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			checks[i] = pipe.Exists(ctx, aliveKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check room ttl: %w", err)
	}

	out := make([]game.RoomSummary, 0, len(ids))
	var stale []string
	for i, id := range ids {
		if checks[i].Val() == 0 {
			stale = append(stale, id)
			continue
		}
		var s game.RoomSummary
		if err := json.Unmarshal([]byte(entries[id]), &s); err != nil {
			stale = append(stale, id)
			continue
		}
		out = append(out, s)
	}
	if len(stale) > 0 {
		if err := d.client.HDel(ctx, d.roomsKey, stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune stale rooms: %w", err)
		}
	}

	game.SortSummaries(out)
	return out, nil
}
