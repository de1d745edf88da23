package verifier

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	id "landregistry/pkg/domain"
)

const membersKey = "landregistry:verifiers"

// RedisStore keeps verifier membership in a Redis set so multiple registry
// instances can share one authorization list.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Add(ctx context.Context, identity id.Identity) error {
	if err := s.client.SAdd(ctx, membersKey, identity.String()).Err(); err != nil {
		return fmt.Errorf("add verifier: %w", err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, identity id.Identity) error {
	if err := s.client.SRem(ctx, membersKey, identity.String()).Err(); err != nil {
		return fmt.Errorf("remove verifier: %w", err)
	}
	return nil
}

func (s *RedisStore) IsMember(ctx context.Context, identity id.Identity) (bool, error) {
	member, err := s.client.SIsMember(ctx, membersKey, identity.String()).Result()
	if err != nil {
		return false, fmt.Errorf("check verifier: %w", err)
	}
	return member, nil
}

func (s *RedisStore) List(ctx context.Context) ([]id.Identity, error) {
	raw, err := s.client.SMembers(ctx, membersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list verifiers: %w", err)
	}
	members := make([]id.Identity, 0, len(raw))
	for _, m := range raw {
		members = append(members, id.Identity(m))
	}
	return members, nil
}
