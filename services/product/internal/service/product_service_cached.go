package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sarmatovd/shop-services/pkg/utils"
	"github.com/sarmatovd/shop-services/services/product/internal/domain"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// cachedProductService caches single-product reads in redis. Cache
// failures fall through to the underlying service, and the breaker
// stops hitting redis when it keeps erroring.
type cachedProductService struct {
	next        ProductService
	redisClient *redis.Client
	cacheTTL    time.Duration
	cb          *gobreaker.CircuitBreaker
}

func NewCachedProductService(next ProductService, redisClient *redis.Client, logger *zap.Logger) ProductService {
	settings := gobreaker.Settings{
		Name:        "ProductCache",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn(
				"Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &cachedProductService{
		next:        next,
		redisClient: redisClient,
		cacheTTL:    time.Minute * 10,
		cb:          gobreaker.NewCircuitBreaker(settings),
	}
}

func (s *cachedProductService) Create(ctx context.Context, product *domain.Product) (int64, error) {
	return s.next.Create(ctx, product)
}

func (s *cachedProductService) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	key := fmt.Sprintf("product:%d", id)

	val, err := utils.ExecuteWithBreaker(s.cb, func() (string, error) {
		return s.redisClient.Get(ctx, key).Result()
	})
	if err == nil {
		var product domain.Product
		if err := json.Unmarshal([]byte(val), &product); err == nil {
			return &product, nil
		}
	}

	product, err := s.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(product); err == nil {
		_, _ = utils.ExecuteWithBreaker(s.cb, func() (string, error) {
			return s.redisClient.Set(ctx, key, data, s.cacheTTL).Result()
		})
	}

	return product, nil
}

func (s *cachedProductService) FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	return s.next.FindByIDs(ctx, ids)
}

func (s *cachedProductService) List(ctx context.Context, limit, offset int64, search string) ([]domain.Product, int64, error) {
	return s.next.List(ctx, limit, offset, search)
}

func (s *cachedProductService) Delete(ctx context.Context, id int64) error {
	if err := s.next.Delete(ctx, id); err != nil {
		return err
	}

	key := fmt.Sprintf("product:%d", id)
	_, _ = utils.ExecuteWithBreaker(s.cb, func() (int64, error) {
		return s.redisClient.Del(ctx, key).Result()
	})

	return nil
}
