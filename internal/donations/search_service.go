package donations

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"foodshare/pkg/geo"
	"foodshare/pkg/models"

	"go.uber.org/zap"
)

type SearchService struct {
	store    Store
	logger   *zap.Logger
	defaults SearchDefaults
}

func NewSearchService(store Store, logger *zap.Logger, defaults SearchDefaults) *SearchService {
	return &SearchService{
		store:    store,
		logger:   logger,
		defaults: defaults,
	}
}

// Search returns one page of donations matching the query. Without an origin
// filtering, ordering and paging are pushed down to the store. With an origin
// the store only applies the cheap filters and a bounding box; exact distances
// are computed here, in the same pass that drops candidates outside the radius.
func (s *SearchService) Search(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	query = query.Normalize(s.defaults)

	filter := Filter{
		Status:   query.Status,
		Category: query.Category,
		Term:     query.Term,
	}

	if query.Origin == nil {
		return s.searchByRecency(ctx, filter, query.Page, query.Limit)
	}

	return s.searchByDistance(ctx, filter, *query.Origin, query.RadiusKm, query.Page, query.Limit)
}

// ListDonorDonations returns a donor's donations in any status, newest first.
func (s *SearchService) ListDonorDonations(ctx context.Context, donorID string, page, limit int) (*SearchResult, error) {
	page, limit = normalizePage(page, limit, s.defaults)

	return s.searchByRecency(ctx, Filter{DonorID: donorID}, page, limit)
}

func (s *SearchService) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	donation, err := s.store.GetDonation(ctx, id)
	if err != nil {
		if errors.Is(err, ErrDonationNotFound) {
			return nil, err
		}
		s.logger.Error("unable to fetch donation", zap.String("donation_id", id), zap.Error(err))
		return nil, fmt.Errorf("get donation %s: %w", id, err)
	}

	return donation, nil
}

func (s *SearchService) searchByRecency(ctx context.Context, filter Filter, page, limit int) (*SearchResult, error) {
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, s.unavailable(err)
	}

	skip := offset(page, limit)
	donations := []models.Donation{}

	if skip < total {
		filter.Order = OrderNewest
		filter.Limit = limit
		filter.Offset = skip

		donations, err = s.store.FindMatching(ctx, filter)
		if err != nil {
			return nil, s.unavailable(err)
		}
	}

	return &SearchResult{
		Donations:  donations,
		Pagination: models.NewPagination(total, page, limit),
	}, nil
}

func (s *SearchService) searchByDistance(ctx context.Context, filter Filter, origin geo.Point, radiusKm float64, page, limit int) (*SearchResult, error) {
	bounds := geo.BoundingBox(origin, radiusKm)
	filter.Bounds = &bounds

	candidates, err := s.store.FindMatching(ctx, filter)
	if err != nil {
		return nil, s.unavailable(err)
	}

	matches := make([]models.Donation, 0, len(candidates))
	for _, donation := range candidates {
		distance := geo.DistanceKm(origin.Latitude, origin.Longitude, donation.Latitude, donation.Longitude)
		if distance > radiusKm {
			continue
		}
		d := distance
		donation.Distance = &d
		matches = append(matches, donation)
	}

	if err := ctx.Err(); err != nil {
		return nil, s.unavailable(err)
	}

	// Equal distances fall back to newest first so paging is stable.
	sort.SliceStable(matches, func(i, j int) bool {
		if *matches[i].Distance != *matches[j].Distance {
			return *matches[i].Distance < *matches[j].Distance
		}
		return newerFirst(&matches[i], &matches[j])
	})

	s.logger.Debug("radius search",
		zap.Float64("latitude", origin.Latitude),
		zap.Float64("longitude", origin.Longitude),
		zap.Float64("radius_km", radiusKm),
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(matches)),
	)

	total := len(matches)
	skip := offset(page, limit)
	donations := []models.Donation{}
	if skip < total {
		end := total
		if limit < total-skip {
			end = skip + limit
		}
		donations = matches[skip:end]
	}

	return &SearchResult{
		Donations:  donations,
		Pagination: models.NewPagination(total, page, limit),
	}, nil
}

func (s *SearchService) unavailable(err error) error {
	s.logger.Error("donation search failed", zap.Error(err))
	return ErrSearchUnavailable
}
