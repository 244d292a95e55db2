package recent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oryclothing/ory-backend/internal/catalog"
	pkgerrors "github.com/oryclothing/ory-backend/pkg/errors"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

const maxEntries = 8

type store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	RecentKey(sessionID string) string
}

// Service tracks the products a session viewed most recently, newest first.
type Service interface {
	Record(ctx context.Context, sessionID, productID string) error
	List(ctx context.Context, sessionID string) ([]catalog.Product, error)
}

type service struct {
	store   store
	catalog catalog.Catalog
	ttl     time.Duration
	logg    *logger.Logger
}

// NewService builds the recently-viewed tracker.
func NewService(st store, cat catalog.Catalog, ttl time.Duration, logg *logger.Logger) (Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if ttl <= 0 {
		ttl = 720 * time.Hour
	}
	return &service{store: st, catalog: cat, ttl: ttl, logg: logg}, nil
}

func (s *service) Record(ctx context.Context, sessionID, productID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if _, ok := s.catalog.Get(productID); !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", productID))
	}

	ids, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	// Move-to-front with dedup, capped at maxEntries.
	next := make([]string, 0, maxEntries)
	next = append(next, productID)
	for _, id := range ids {
		if id == productID {
			continue
		}
		next = append(next, id)
		if len(next) == maxEntries {
			break
		}
	}

	payload, err := json.Marshal(next)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode recent list")
	}
	key := s.store.RecentKey(sessionID)
	if err := s.store.Set(ctx, key, payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist recent list")
	}
	return nil
}

func (s *service) List(ctx context.Context, sessionID string) ([]catalog.Product, error) {
	ids, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	products := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := s.catalog.Get(id); ok {
			products = append(products, product)
		}
	}
	return products, nil
}

func (s *service) load(ctx context.Context, sessionID string) ([]string, error) {
	raw, err := s.store.Get(ctx, s.store.RecentKey(sessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent list")
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		// Unreadable payloads reset the list rather than poisoning it.
		if s.logg != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "recent.payload_reset")
		}
		return nil, nil
	}
	return ids, nil
}
