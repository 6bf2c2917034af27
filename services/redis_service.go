package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/navitadamayantisyarif/pbl311-sub000/config"

	"github.com/go-redis/redis/v8"
)

// InterfaceRedisService defines the Redis cache service interface
type InterfaceRedisService interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	CacheDoorStatus(userID uint, doors interface{}, expiration time.Duration) error
	GetDoorStatus(userID uint, dest interface{}) error
	InvalidateDoorStatus(userID uint) error
}

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisService creates a new Redis service
func NewRedisService(cfg *config.Config) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: "", // No password set
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	return &RedisService{
		Client: client,
		Ctx:    ctx,
	}
}

// Set sets a key-value pair in Redis with expiration
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// Get gets a value from Redis by key
func (s *RedisService) Get(key string, dest interface{}) error {
	val, err := s.Client.Get(s.Ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(val), dest)
}

// Delete deletes a key from Redis
func (s *RedisService) Delete(key string) error {
	return s.Client.Del(s.Ctx, key).Err()
}

func doorStatusKey(userID uint) string {
	return fmt.Sprintf("door_status:user:%d", userID)
}

// CacheDoorStatus 缓存用户的门状态列表
func (s *RedisService) CacheDoorStatus(userID uint, doors interface{}, expiration time.Duration) error {
	return s.Set(doorStatusKey(userID), doors, expiration)
}

// GetDoorStatus 读取用户的门状态列表缓存
func (s *RedisService) GetDoorStatus(userID uint, dest interface{}) error {
	return s.Get(doorStatusKey(userID), dest)
}

// InvalidateDoorStatus 失效用户的门状态缓存（门状态提交后由扇出调用）
func (s *RedisService) InvalidateDoorStatus(userID uint) error {
	return s.Delete(doorStatusKey(userID))
}
