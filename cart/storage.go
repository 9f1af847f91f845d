package cart

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage is durable key/value storage for the serialized cart.
type Storage interface {
	// Load returns found=false when nothing was ever saved under key.
	Load(key string) (data []byte, found bool, err error)
	Save(key string, data []byte) error
}

// FileStorage keeps one JSON file per key inside Dir.
type FileStorage struct {
	Dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cart dir: %w", err)
	}
	return &FileStorage{Dir: dir}, nil
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

func (s *FileStorage) Load(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Save writes through a temp file and rename so a crash never leaves a
// half-written cart behind.
func (s *FileStorage) Save(key string, data []byte) error {
	tmp, err := os.CreateTemp(s.Dir, key+"-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(key))
}

type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: map[string][]byte{}}
}

func (s *MemoryStorage) Load(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.data[key]
	return append([]byte(nil), data...), ok, nil
}

func (s *MemoryStorage) Save(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return nil
}

const redisOpTimeout = 3 * time.Second

// RedisStorage keeps carts under "cart:<owner>:<key>" with a sliding TTL, for
// a shopper whose cart should follow them across devices.
type RedisStorage struct {
	client *redis.Client
	owner  string
	ttl    time.Duration
}

func NewRedisStorage(client *redis.Client, owner string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, owner: owner, ttl: ttl}
}

func (s *RedisStorage) redisKey(key string) string {
	return fmt.Sprintf("cart:%s:%s", s.owner, key)
}

func (s *RedisStorage) Load(key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisStorage) Save(key string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return s.client.Set(ctx, s.redisKey(key), data, s.ttl).Err()
}
