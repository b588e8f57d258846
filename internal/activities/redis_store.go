// internal/activities/redis_store.go
package activities

import (
	"context"
	"fmt"
	"strconv"

	"mergington-activities/internal/models"

	"github.com/redis/go-redis/v9"
)

// appendScript pushes ARGV[1] onto the roster list only when the activity hash exists,
// so an unknown name never creates a stray roster key.
var appendScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
return redis.call('RPUSH', KEYS[2], ARGV[1])
`)

// RedisStore keeps one hash per activity, one list per roster and an index list that
// preserves catalog order.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":activities"
}

func (s *RedisStore) activityKey(name string) string {
	return s.prefix + ":activity:" + name
}

func (s *RedisStore) rosterKey(name string) string {
	return s.prefix + ":activity:" + name + ":participants"
}

func (s *RedisStore) Seed(ctx context.Context, catalog models.Catalog) error {
	previous, err := s.client.LRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("read activity index: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, name := range previous {
			pipe.Del(ctx, s.activityKey(name), s.rosterKey(name))
		}
		pipe.Del(ctx, s.indexKey())

		for _, a := range catalog {
			pipe.Del(ctx, s.activityKey(a.Name), s.rosterKey(a.Name))
			pipe.HSet(ctx, s.activityKey(a.Name),
				"description", a.Description,
				"schedule", a.Schedule,
				"max_participants", a.MaxParticipants,
			)
			if len(a.Participants) > 0 {
				members := make([]interface{}, len(a.Participants))
				for i, p := range a.Participants {
					members[i] = p
				}
				pipe.RPush(ctx, s.rosterKey(a.Name), members...)
			}
			pipe.RPush(ctx, s.indexKey(), a.Name)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed activities: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) (models.Catalog, error) {
	names, err := s.client.LRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read activity index: %w", err)
	}

	metas := make([]*redis.MapStringStringCmd, len(names))
	rosters := make([]*redis.StringSliceCmd, len(names))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, name := range names {
			metas[i] = pipe.HGetAll(ctx, s.activityKey(name))
			rosters[i] = pipe.LRange(ctx, s.rosterKey(name), 0, -1)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read activities: %w", err)
	}

	out := make(models.Catalog, 0, len(names))
	for i, name := range names {
		meta := metas[i].Val()
		maxParticipants, err := strconv.Atoi(meta["max_participants"])
		if err != nil {
			return nil, fmt.Errorf("activity %q: bad max_participants %q: %w", name, meta["max_participants"], err)
		}
		participants := rosters[i].Val()
		if participants == nil {
			participants = []string{}
		}
		out = append(out, models.Activity{
			Name:            name,
			Description:     meta["description"],
			Schedule:        meta["schedule"],
			MaxParticipants: maxParticipants,
			Participants:    participants,
		})
	}
	return out, nil
}

func (s *RedisStore) AppendParticipant(ctx context.Context, activityName, email string) (int, error) {
	n, err := appendScript.Run(ctx, s.client,
		[]string{s.activityKey(activityName), s.rosterKey(activityName)},
		email,
	).Int()
	if err != nil {
		return 0, fmt.Errorf("append participant: %w", err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s", ErrActivityNotFound, activityName)
	}
	return n, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
