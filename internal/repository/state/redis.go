package state

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/drowsiness-alarm/internal/domain/alert"
	pb "github.com/oshokin/drowsiness-alarm/internal/pb/v1"
)

// DefaultRedisKey is the hash holding one field per subject.
const DefaultRedisKey = "drowsiness:alerts"

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	// Key overrides DefaultRedisKey.
	Key string
}

// hashStore is the subset of the Redis client used by the repository.
type hashStore interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisRepository persists alert states in a Redis hash.
// Every field is a subject identifier and every value is the protojson
// encoding of that subject's alert state.
type RedisRepository struct {
	// client executes hash commands.
	client hashStore
	// key is the hash name.
	key string
}

// NewRedisRepository connects to Redis and verifies the connection with PING.
func NewRedisRepository(ctx context.Context, opts *RedisOptions) (*RedisRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	repo := newRedisRepository(client, opts.Key)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("ping redis at %s: %w", opts.Address, err)
	}

	return repo, nil
}

func newRedisRepository(client hashStore, key string) *RedisRepository {
	if key == "" {
		key = DefaultRedisKey
	}

	return &RedisRepository{
		client: client,
		key:    key,
	}
}

// Load reads all subject fields from the hash.
func (r *RedisRepository) Load(ctx context.Context) ([]*alert.State, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("read hash %s: %w", r.key, err)
	}

	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	states := make([]*alert.State, 0, len(fields))

	for subjectID, value := range fields {
		var raw structpb.Struct
		if err = protojson.Unmarshal([]byte(value), &raw); err != nil {
			return nil, fmt.Errorf("decode subject %q: %w", subjectID, err)
		}

		item, err := pb.AlertStateFromStruct(&raw)
		if err != nil {
			return nil, fmt.Errorf("decode subject %q: %w", subjectID, err)
		}

		states = append(states, fromProto(item))
	}

	alert.SortBySubject(states)

	return states, nil
}

// Save writes the state of one subject into its hash field.
func (r *RedisRepository) Save(ctx context.Context, state *alert.State) error {
	if state == nil || state.SubjectID == "" {
		return errSubjectRequired
	}

	data, err := protojson.Marshal(toProto(state).ToStruct())
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err = r.client.HSet(ctx, r.key, state.SubjectID, string(data)).Err(); err != nil {
		return fmt.Errorf("write hash %s: %w", r.key, err)
	}

	return nil
}

// Close releases the Redis connection pool.
func (r *RedisRepository) Close() error {
	return r.client.Close()
}
