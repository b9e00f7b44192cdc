// api/db/redis.go
package db

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logger "github.com/mealcraft/api/logging"
	"github.com/mealcraft/api/model"
)

var (
	RedisClient   *redis.Client
	encryptionKey []byte
)

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
		PoolSize:     viper.GetInt("redis.poolSize"),
		PoolTimeout:  viper.GetDuration("redis.poolTimeout"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	encryptionKey = []byte(viper.GetString("redis.encryptionKey"))
	if len(encryptionKey) != 32 {
		return fmt.Errorf("invalid encryption key length: must be 32 bytes")
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

func encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func CacheRecipe(ctx context.Context, recipe *model.Recipe) error {
	recipeJSON, err := json.Marshal(recipe)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	key := fmt.Sprintf("recipe:%s", recipe.ID)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, recipeJSON, defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache recipe: %w", err)
	}

	logger.Debug("Recipe cached successfully", zap.String("recipeID", recipe.ID))
	return nil
}

func GetCachedRecipe(ctx context.Context, recipeID string) (*model.Recipe, error) {
	key := fmt.Sprintf("recipe:%s", recipeID)
	recipeJSON, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("Recipe not found in cache", zap.String("recipeID", recipeID))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get recipe from cache: %w", err)
	}

	var recipe model.Recipe
	err = json.Unmarshal([]byte(recipeJSON), &recipe)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe: %w", err)
	}

	logger.Debug("Recipe retrieved from cache", zap.String("recipeID", recipeID))
	return &recipe, nil
}

func DeleteCachedRecipe(ctx context.Context, recipeID string) error {
	key := fmt.Sprintf("recipe:%s", recipeID)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete recipe from cache: %w", err)
	}
	logger.Debug("Recipe deleted from cache", zap.String("recipeID", recipeID))
	return nil
}

// UserAttributes is the cached slice of a user's identity attributes. It is
// encrypted at rest; ACG membership controls access to restricted recipes
// and must not leak out of a shared Redis.
type UserAttributes struct {
	Email                 string   `json:"email"`
	Region                string   `json:"region,omitempty"`
	AccessControlGroups   []string `json:"access_control_groups,omitempty"`
	CommunitiesOfInterest []string `json:"communities_of_interest,omitempty"`
}

func CacheUserAttributes(ctx context.Context, attrs *UserAttributes) error {
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("failed to marshal user attributes: %w", err)
	}

	encryptedAttrs, err := encrypt(attrsJSON)
	if err != nil {
		return fmt.Errorf("failed to encrypt user attributes: %w", err)
	}

	key := fmt.Sprintf("userattrs:%s", attrs.Email)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, base64.StdEncoding.EncodeToString(encryptedAttrs), defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache user attributes: %w", err)
	}

	logger.Debug("User attributes cached successfully", zap.String("email", attrs.Email))
	return nil
}

func GetCachedUserAttributes(ctx context.Context, email string) (*UserAttributes, error) {
	key := fmt.Sprintf("userattrs:%s", email)
	encryptedStr, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("User attributes not found in cache", zap.String("email", email))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user attributes from cache: %w", err)
	}

	encryptedAttrs, err := base64.StdEncoding.DecodeString(encryptedStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode user attributes: %w", err)
	}

	attrsJSON, err := decrypt(encryptedAttrs)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt user attributes: %w", err)
	}

	var attrs UserAttributes
	err = json.Unmarshal(attrsJSON, &attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal user attributes: %w", err)
	}

	logger.Debug("User attributes retrieved from cache", zap.String("email", email))
	return &attrs, nil
}

func DeleteCachedUserAttributes(ctx context.Context, email string) error {
	key := fmt.Sprintf("userattrs:%s", email)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete user attributes from cache: %w", err)
	}
	logger.Debug("User attributes deleted from cache", zap.String("email", email))
	return nil
}

func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := RedisClient.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}
