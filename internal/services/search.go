package services

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/singleflight"

	redisclient "github.com/platewatch/platewatch-backend/internal/clients/redis"
	repos "github.com/platewatch/platewatch-backend/internal/data/repos/inspections"
	apperrors "github.com/platewatch/platewatch-backend/internal/pkg/errors"
	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
	"github.com/platewatch/platewatch-backend/internal/search"
)

type SearchService interface {
	// Search runs a ranked prefix search over establishment names and returns
	// nested per-establishment documents. The raw term must be non-blank; a
	// term that normalizes away entirely matches nothing and returns an empty
	// slice without touching the store.
	Search(ctx context.Context, term string) ([]search.EstablishmentResult, error)
}

type searchService struct {
	log         *logger.Logger
	searchRepo  repos.SearchRepo
	cache       redisclient.ResultCache
	group       singleflight.Group
	positiveTTL time.Duration
	negativeTTL time.Duration
}

func NewSearchService(
	baseLog *logger.Logger,
	searchRepo repos.SearchRepo,
	cache redisclient.ResultCache,
	positiveTTL time.Duration,
	negativeTTL time.Duration,
) SearchService {
	return &searchService{
		log:         baseLog.With("service", "SearchService"),
		searchRepo:  searchRepo,
		cache:       cache,
		positiveTTL: positiveTTL,
		negativeTTL: negativeTTL,
	}
}

func (s *searchService) Search(ctx context.Context, term string) ([]search.EstablishmentResult, error) {
	if strings.TrimSpace(term) == "" {
		return nil, apperrors.ErrInvalidArgument
	}

	plan := search.BuildPlan(term)
	if plan.Empty() {
		s.log.Debug("Term normalized to nothing, skipping store", "term", term)
		return []search.EstablishmentResult{}, nil
	}

	if payload, ok := s.cache.Get(ctx, redisclient.PositiveKey(plan.Key)); ok {
		var cached []search.EstablishmentResult
		if err := json.Unmarshal(payload, &cached); err == nil {
			s.log.Debug("Cache hit", "key", plan.Key, "results", len(cached))
			return cached, nil
		}
		s.log.Warn("Discarding undecodable cache entry", "key", plan.Key)
	}
	if _, ok := s.cache.Get(ctx, redisclient.NegativeKey(plan.Key)); ok {
		s.log.Debug("Negative cache hit", "key", plan.Key)
		return []search.EstablishmentResult{}, nil
	}

	// Concurrent misses for the same normalized key share one store query.
	v, err, _ := s.group.Do(plan.Key, func() (interface{}, error) {
		return s.queryAndCache(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	return v.([]search.EstablishmentResult), nil
}

func (s *searchService) queryAndCache(ctx context.Context, plan search.Plan) ([]search.EstablishmentResult, error) {
	rows, err := s.searchRepo.RankedPrefix(ctx, nil, plan.TSQuery)
	if err != nil && isTransientStoreError(err) {
		s.log.Warn("Transient store error, retrying search once", "key", plan.Key, "error", err)
		rows, err = s.searchRepo.RankedPrefix(ctx, nil, plan.TSQuery)
	}
	if err != nil {
		s.log.Error("Search query failed", "key", plan.Key, "error", err)
		return nil, err
	}

	results := search.Assemble(rows)

	if len(results) == 0 {
		s.cache.Set(ctx, redisclient.NegativeKey(plan.Key), []byte("[]"), s.negativeTTL)
		return results, nil
	}

	payload, err := json.Marshal(results)
	if err != nil {
		s.log.Error("Failed to serialize results for cache", "key", plan.Key, "error", err)
		return results, nil
	}
	s.cache.Set(ctx, redisclient.PositiveKey(plan.Key), payload, s.positiveTTL)
	return results, nil
}

// isTransientStoreError recognizes the narrow class of store failures worth
// one immediate retry: serialization aborts, deadlocks, lock-not-available,
// and network timeouts. Everything else surfaces to the caller unchanged.
func isTransientStoreError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
