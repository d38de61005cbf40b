package reports

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/ariefcatur/go-market-ledger.git/internal/kafka"
	"github.com/ariefcatur/go-market-ledger.git/internal/market"
	"github.com/ariefcatur/go-market-ledger.git/internal/redisx"
)

const trendingLimit = 10

// Service follows the order lifecycle topics and keeps the Redis report
// caches warm: order status entries and the trending rollup. The ledger
// itself is already consistent before any event is published; this is
// read-side freshening only.
type Service struct {
	Store       market.Store
	Redis       *redis.Client
	Log         *zap.Logger
	ServiceName string
}

func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup per event_id
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case market.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[market.OrderPlacedPayload](env.Payload)
		if err != nil {
			return err
		}
		for _, id := range p.OrderIDs {
			s.cacheStatus(ctx, id, market.StatusPending)
		}
		return nil

	case market.EventOrderCompleted:
		p, err := kafkax.UnwrapPayload[market.OrderCompletedPayload](env.Payload)
		if err != nil {
			return err
		}
		s.cacheStatus(ctx, p.OrderID, market.StatusCompleted)
		return s.refreshTrending(ctx)

	case market.EventOrderCancelled:
		p, err := kafkax.UnwrapPayload[market.OrderCancelledPayload](env.Payload)
		if err != nil {
			return err
		}
		s.cacheStatus(ctx, p.OrderID, market.StatusCancelled)
		return s.refreshTrending(ctx)

	case market.EventOrderDeleted:
		p, err := kafkax.UnwrapPayload[market.OrderDeletedPayload](env.Payload)
		if err != nil {
			return err
		}
		_ = s.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, p.OrderID)).Err()
		return nil

	default:
		return nil // ignore
	}
}

func (s *Service) cacheStatus(ctx context.Context, orderID string, status market.Status) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body, _ := json.Marshal(map[string]any{"status": status})
	if err := s.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err(); err != nil {
		s.Log.Warn("status cache set failed", zap.String("order_id", orderID), zap.Error(err))
	}
}

func (s *Service) refreshTrending(ctx context.Context) error {
	rollups, err := s.Store.RollupTrending(ctx, trendingLimit)
	if err != nil {
		return err
	}
	body, err := json.Marshal(rollups)
	if err != nil {
		return err
	}
	if err := s.Redis.Set(ctx, redisx.KeyTrending, body, redisx.TTLTrending).Err(); err != nil {
		s.Log.Warn("trending cache set failed", zap.Error(err))
	}
	return nil
}
