package tgbotbase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const redisPropertyPrefix = "tg:property"

type RedisPropertyStorage struct {
	client *redis.Client
}

var _ PropertyStorage = &RedisPropertyStorage{}

func NewRedisPropertyStorage(pool RedisPool) *RedisPropertyStorage {
	return &RedisPropertyStorage{client: pool.GetConnByName("property")}
}

func redisPropertyKey(name string, user UserID, chat ChatID) string {
	if strings.Contains(name, ":") {
		panic(fmt.Sprintf("Property key %q contains forbidden symbol %q", name, ":"))
	}
	return fmt.Sprintf("%s:%s:%d:%d", redisPropertyPrefix, name, user, chat)
}

func parseRedisPropertyKey(key string) (UserID, ChatID, error) {
	parts := strings.Split(key, ":")
	if len(parts) != 5 {
		return 0, 0, fmt.Errorf("key %q has unexpected number of parts", key)
	}
	user, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot parse user of key %q: %w", key, err)
	}
	chat, err := strconv.ParseInt(parts[4], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot parse chat of key %q: %w", key, err)
	}
	return UserID(user), ChatID(chat), nil
}

func (r *RedisPropertyStorage) SetPropertyForUserInChat(ctx context.Context, name string, user UserID, chat ChatID, value interface{}) error {
	log.WithFields(log.Fields{"name": name, "user": user, "chat": chat, "value": value}).Debug("Setting property")
	return r.client.Set(ctx, redisPropertyKey(name, user, chat), value, 0).Err()
}

func (r *RedisPropertyStorage) SetPropertyForUser(ctx context.Context, name string, user UserID, value interface{}) error {
	return r.SetPropertyForUserInChat(ctx, name, user, ChatID(user), value)
}

func (r *RedisPropertyStorage) SetPropertyForChat(ctx context.Context, name string, chat ChatID, value interface{}) error {
	return r.SetPropertyForUserInChat(ctx, name, 0, chat, value)
}

func (r *RedisPropertyStorage) GetProperty(ctx context.Context, name string, user UserID, chat ChatID) (string, error) {
	for _, uc := range lookupOrder(user, chat) {
		val, err := r.client.Get(ctx, redisPropertyKey(name, UserID(uc[0]), ChatID(uc[1]))).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return "", err
		}
		return val, nil
	}

	log.WithFields(log.Fields{"name": name, "user": user, "chat": chat}).Debug("No property set")
	return "", nil
}

func (r *RedisPropertyStorage) GetEveryHavingProperty(ctx context.Context, name string) ([]PropertyValue, error) {
	pattern := fmt.Sprintf("%s:%s:*:*", redisPropertyPrefix, name)
	keys, err := GetAllKeys(ctx, r.client, pattern)
	if err != nil {
		return nil, err
	}
	props := make([]PropertyValue, 0, len(keys))
	for _, k := range keys {
		value, err := r.client.Get(ctx, k).Result()
		if err != nil {
			log.WithFields(log.Fields{"key": k, "err": err}).Error("Property could not be retrieved")
			continue
		}

		user, chat, err := parseRedisPropertyKey(k)
		if err != nil {
			log.WithField("err", err).Error("Skipping malformed property key")
			continue
		}

		props = append(props, PropertyValue{
			User:  user,
			Chat:  chat,
			Value: value})
	}

	return props, nil
}
