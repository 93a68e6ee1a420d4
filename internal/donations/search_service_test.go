package donations

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"foodshare/pkg/geo"
	"foodshare/pkg/metadata"
	"foodshare/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) FindMatching(ctx context.Context, filter Filter) ([]models.Donation, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Donation), args.Error(1)
}

func (m *MockStore) Count(ctx context.Context, filter Filter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Donation), args.Error(1)
}

func newDonation(id, title string, category metadata.Category, lat, lon float64, age time.Duration) models.Donation {
	return models.Donation{
		ID:          id,
		Title:       title,
		Description: "Surplus " + title,
		Category:    category,
		Quantity:    1,
		Unit:        "kg",
		Expiry:      baseTime.Add(48 * time.Hour),
		Address:     "Jl. Ijen No. 25, Malang",
		Latitude:    lat,
		Longitude:   lon,
		Status:      metadata.StatusAvailable,
		DonorID:     "donor-1",
		CreatedAt:   baseTime.Add(-age),
		UpdatedAt:   baseTime.Add(-age),
	}
}

func newTestService(donations ...models.Donation) *SearchService {
	return NewSearchService(NewMemoryStore(donations...), zap.NewNop(), DefaultSearchDefaults)
}

func ids(donations []models.Donation) []string {
	result := make([]string, 0, len(donations))
	for _, d := range donations {
		result = append(result, d.ID)
	}
	return result
}

func TestSearchWithinRadius(t *testing.T) {
	service := newTestService(
		newDonation("A", "Rice", metadata.CategoryGrains, 0, 0, time.Hour),
		newDonation("B", "Apples", metadata.CategoryFruits, 0, 1, 2*time.Hour),
		newDonation("C", "Milk", metadata.CategoryDairy, 10, 10, 3*time.Hour),
	)

	result, err := service.Search(context.Background(), SearchQuery{
		Origin:   &geo.Point{Latitude: 0, Longitude: 0},
		RadiusKm: 150,
		Page:     1,
		Limit:    10,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, ids(result.Donations))
	assert.Equal(t, models.Pagination{Total: 2, Pages: 1, Current: 1, Limit: 10}, result.Pagination)
	require.NotNil(t, result.Donations[0].Distance)
	require.NotNil(t, result.Donations[1].Distance)
	assert.Equal(t, 0.0, *result.Donations[0].Distance)
	assert.InDelta(t, 111.19, *result.Donations[1].Distance, 0.1)
}

func TestSearchEquidistantPrefersNewest(t *testing.T) {
	service := newTestService(
		newDonation("old", "Bread", metadata.CategoryBakery, 0, 0.5, 5*time.Hour),
		newDonation("new", "Bread", metadata.CategoryBakery, 0, 0.5, time.Hour),
		newDonation("near", "Bread", metadata.CategoryBakery, 0, 0.1, 9*time.Hour),
	)

	result, err := service.Search(context.Background(), SearchQuery{
		Origin:   &geo.Point{Latitude: 0, Longitude: 0},
		RadiusKm: 100,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"near", "new", "old"}, ids(result.Donations))
}

func TestSearchDefaultRadius(t *testing.T) {
	service := newTestService(
		newDonation("close", "Soup", metadata.CategoryPreparedMeals, -7.9797, 112.6304, time.Hour),
		// about 5.5 km north of the origin
		newDonation("far", "Soup", metadata.CategoryPreparedMeals, -7.93, 112.6304, time.Hour),
	)

	result, err := service.Search(context.Background(), SearchQuery{
		Origin: &geo.Point{Latitude: -7.9797, Longitude: 112.6304},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"close"}, ids(result.Donations))
}

func TestSearchByCategory(t *testing.T) {
	service := newTestService(
		newDonation("bakery", "Croissants", metadata.CategoryBakery, 0, 0, time.Hour),
		newDonation("veg", "Carrots", metadata.CategoryVegetables, 0, 0, time.Hour),
	)

	result, err := service.Search(context.Background(), SearchQuery{Category: "bakery"})

	require.NoError(t, err)
	assert.Equal(t, []string{"bakery"}, ids(result.Donations))
	assert.Equal(t, 1, result.Pagination.Total)
}

func TestSearchTextIsCaseInsensitive(t *testing.T) {
	bread := newDonation("bread", "Leftovers", metadata.CategoryBakery, 0, 0, time.Hour)
	bread.Description = "Daily leftover Bread and pastries"
	address := newDonation("address", "Rice", metadata.CategoryGrains, 0, 0, 2*time.Hour)
	address.Address = "Jl. BREADFRUIT 7"
	other := newDonation("other", "Milk", metadata.CategoryDairy, 0, 0, 3*time.Hour)

	service := newTestService(bread, address, other)

	result, err := service.Search(context.Background(), SearchQuery{Term: "  bread "})

	require.NoError(t, err)
	assert.Equal(t, []string{"bread", "address"}, ids(result.Donations))
}

func TestSearchTextTreatsWildcardsLiterally(t *testing.T) {
	percent := newDonation("percent", "100% juice", metadata.CategoryBeverages, 0, 0, time.Hour)
	plain := newDonation("plain", "1000 juice boxes", metadata.CategoryBeverages, 0, 0, 2*time.Hour)

	result, err := newTestService(percent, plain).Search(context.Background(), SearchQuery{Term: "0%"})

	require.NoError(t, err)
	assert.Equal(t, []string{"percent"}, ids(result.Donations))
}

func TestSearchDefaultsToAvailableStatus(t *testing.T) {
	available := newDonation("available", "Rice", metadata.CategoryGrains, 0, 0, time.Hour)
	reserved := newDonation("reserved", "Rice", metadata.CategoryGrains, 0, 0, time.Hour)
	reserved.Status = metadata.StatusReserved
	deleted := newDonation("deleted", "Rice", metadata.CategoryGrains, 0, 0, time.Hour)
	deleted.Status = metadata.StatusDeleted

	service := newTestService(available, reserved, deleted)

	result, err := service.Search(context.Background(), SearchQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"available"}, ids(result.Donations))

	result, err = service.Search(context.Background(), SearchQuery{Status: metadata.StatusReserved})
	require.NoError(t, err)
	assert.Equal(t, []string{"reserved"}, ids(result.Donations))
}

func TestSearchWithoutLocationOrdersNewestFirst(t *testing.T) {
	var donations []models.Donation
	for i := 0; i < 7; i++ {
		donations = append(donations, newDonation(fmt.Sprintf("d%d", i), "Rice", metadata.CategoryGrains, float64(i), 0, time.Duration(i*13%7)*time.Hour))
	}
	service := newTestService(donations...)

	result, err := service.Search(context.Background(), SearchQuery{Limit: 100})

	require.NoError(t, err)
	require.Len(t, result.Donations, 7)
	for i := 1; i < len(result.Donations); i++ {
		assert.False(t, result.Donations[i].CreatedAt.After(result.Donations[i-1].CreatedAt), "result %d is newer than result %d", i, i-1)
		assert.Nil(t, result.Donations[i].Distance)
	}
}

func TestSearchPagination(t *testing.T) {
	var donations []models.Donation
	for i := 0; i < 23; i++ {
		donations = append(donations, newDonation(fmt.Sprintf("d%02d", i), "Bread", metadata.CategoryBakery, 0, float64(i)*0.01, time.Duration(i)*time.Minute))
	}
	service := newTestService(donations...)
	origin := &geo.Point{Latitude: 0, Longitude: 0}

	tests := []struct {
		name          string
		query         SearchQuery
		expectedIDs   []string
		expectedPages models.Pagination
	}{
		{
			name:          "first page by recency",
			query:         SearchQuery{Page: 1, Limit: 10},
			expectedIDs:   []string{"d00", "d01", "d02", "d03", "d04", "d05", "d06", "d07", "d08", "d09"},
			expectedPages: models.Pagination{Total: 23, Pages: 3, Current: 1, Limit: 10},
		},
		{
			name:          "last partial page by recency",
			query:         SearchQuery{Page: 3, Limit: 10},
			expectedIDs:   []string{"d20", "d21", "d22"},
			expectedPages: models.Pagination{Total: 23, Pages: 3, Current: 3, Limit: 10},
		},
		{
			name:          "page beyond the last",
			query:         SearchQuery{Page: 9, Limit: 10},
			expectedIDs:   []string{},
			expectedPages: models.Pagination{Total: 23, Pages: 3, Current: 9, Limit: 10},
		},
		{
			name:          "second page by distance",
			query:         SearchQuery{Origin: origin, RadiusKm: 50, Page: 2, Limit: 5},
			expectedIDs:   []string{"d05", "d06", "d07", "d08", "d09"},
			expectedPages: models.Pagination{Total: 23, Pages: 5, Current: 2, Limit: 5},
		},
		{
			name:          "page beyond the last by distance",
			query:         SearchQuery{Origin: origin, RadiusKm: 50, Page: 6, Limit: 5},
			expectedIDs:   []string{},
			expectedPages: models.Pagination{Total: 23, Pages: 5, Current: 6, Limit: 5},
		},
		{
			name:          "invalid page and limit fall back to defaults",
			query:         SearchQuery{Page: -3, Limit: 0},
			expectedIDs:   []string{"d00", "d01", "d02", "d03", "d04", "d05", "d06", "d07", "d08", "d09"},
			expectedPages: models.Pagination{Total: 23, Pages: 3, Current: 1, Limit: 10},
		},
		{
			name:          "limit above the maximum is clamped",
			query:         SearchQuery{Page: 1, Limit: 1000},
			expectedPages: models.Pagination{Total: 23, Pages: 1, Current: 1, Limit: 100},
		},
		{
			name:          "huge page does not overflow",
			query:         SearchQuery{Page: math.MaxInt, Limit: 10},
			expectedIDs:   []string{},
			expectedPages: models.Pagination{Total: 23, Pages: 3, Current: math.MaxInt, Limit: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := service.Search(context.Background(), tt.query)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedPages, result.Pagination)
			if tt.expectedIDs != nil {
				assert.Equal(t, tt.expectedIDs, ids(result.Donations))
			}
			assert.NotNil(t, result.Donations)
		})
	}
}

func TestSearchResultsSatisfyFilters(t *testing.T) {
	categories := metadata.Categories()
	statuses := []metadata.Status{metadata.StatusAvailable, metadata.StatusReserved, metadata.StatusCompleted}
	var donations []models.Donation
	for i := 0; i < 120; i++ {
		d := newDonation(
			fmt.Sprintf("d%03d", i),
			[]string{"Bread", "Rice", "Soup", "Milk"}[i%4],
			categories[i%len(categories)],
			-8+float64(i%11)*0.05,
			112.5+float64(i%13)*0.05,
			time.Duration(i%17)*time.Hour,
		)
		d.Status = statuses[i%len(statuses)]
		donations = append(donations, d)
	}
	service := newTestService(donations...)
	origin := geo.Point{Latitude: -7.8, Longitude: 112.7}

	queries := []SearchQuery{
		{Limit: 7},
		{Category: metadata.CategoryBakery, Limit: 7},
		{Term: "bread", Limit: 7},
		{Origin: &origin, RadiusKm: 15, Limit: 7},
		{Origin: &origin, RadiusKm: 30, Term: "SOUP", Category: metadata.CategoryMeat, Limit: 3},
		{Origin: &origin, RadiusKm: 30, Status: metadata.StatusReserved, Limit: 4},
	}

	for i, query := range queries {
		t.Run(fmt.Sprintf("query %d", i), func(t *testing.T) {
			normalized := query.Normalize(DefaultSearchDefaults)
			var seen int
			var total int

			for page := 1; ; page++ {
				query.Page = page
				result, err := service.Search(context.Background(), query)
				require.NoError(t, err)

				if page == 1 {
					total = result.Pagination.Total
				}
				assert.Equal(t, total, result.Pagination.Total, "total must not depend on page")
				assert.Equal(t, int(math.Ceil(float64(total)/float64(normalized.Limit))), result.Pagination.Pages)

				if len(result.Donations) == 0 {
					break
				}
				seen += len(result.Donations)

				for j, d := range result.Donations {
					assert.Equal(t, normalized.Status, d.Status)
					if normalized.Category != "" {
						assert.Equal(t, normalized.Category, d.Category)
					}
					if normalized.Term != "" {
						filter := Filter{Term: normalized.Term}
						assert.True(t, filter.Matches(&d))
					}
					if normalized.Origin != nil {
						require.NotNil(t, d.Distance)
						assert.LessOrEqual(t, *d.Distance, normalized.RadiusKm)
						assert.InDelta(t, geo.Distance(origin, d.Point()), *d.Distance, 1e-9)
						if j > 0 {
							assert.LessOrEqual(t, *result.Donations[j-1].Distance, *d.Distance)
						}
					} else if j > 0 {
						assert.False(t, d.CreatedAt.After(result.Donations[j-1].CreatedAt))
					}
				}
			}

			assert.Equal(t, total, seen)
		})
	}
}

func TestSearchInvalidOriginFallsBackToRecency(t *testing.T) {
	service := newTestService(
		newDonation("older", "Rice", metadata.CategoryGrains, 0, 0, 2*time.Hour),
		newDonation("newer", "Rice", metadata.CategoryGrains, 50, 50, time.Hour),
	)

	result, err := service.Search(context.Background(), SearchQuery{
		Origin:   &geo.Point{Latitude: 120, Longitude: 0},
		RadiusKm: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"newer", "older"}, ids(result.Donations))
	assert.Nil(t, result.Donations[0].Distance)
}

func TestSearchEmptyStore(t *testing.T) {
	result, err := newTestService().Search(context.Background(), SearchQuery{})

	require.NoError(t, err)
	assert.Empty(t, result.Donations)
	assert.Equal(t, models.Pagination{Total: 0, Pages: 0, Current: 1, Limit: 10}, result.Pagination)
}

func TestSearchStoreFailure(t *testing.T) {
	storeErr := errors.New("connection refused")

	t.Run("count fails", func(t *testing.T) {
		store := new(MockStore)
		store.On("Count", mock.Anything, mock.Anything).Return(0, storeErr).Once()
		service := NewSearchService(store, zap.NewNop(), DefaultSearchDefaults)

		result, err := service.Search(context.Background(), SearchQuery{})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrSearchUnavailable)
		assert.NotErrorIs(t, err, storeErr)
		store.AssertExpectations(t)
	})

	t.Run("find fails", func(t *testing.T) {
		store := new(MockStore)
		store.On("Count", mock.Anything, mock.Anything).Return(3, nil).Once()
		store.On("FindMatching", mock.Anything, mock.Anything).Return(nil, storeErr).Once()
		service := NewSearchService(store, zap.NewNop(), DefaultSearchDefaults)

		_, err := service.Search(context.Background(), SearchQuery{})

		assert.ErrorIs(t, err, ErrSearchUnavailable)
		store.AssertExpectations(t)
	})

	t.Run("radius search fails", func(t *testing.T) {
		store := new(MockStore)
		store.On("FindMatching", mock.Anything, mock.MatchedBy(func(f Filter) bool {
			return f.Bounds != nil && f.Limit == 0 && f.Offset == 0
		})).Return(nil, storeErr).Once()
		service := NewSearchService(store, zap.NewNop(), DefaultSearchDefaults)

		_, err := service.Search(context.Background(), SearchQuery{Origin: &geo.Point{Latitude: 1, Longitude: 1}})

		assert.ErrorIs(t, err, ErrSearchUnavailable)
		store.AssertExpectations(t)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestService(newDonation("A", "Rice", metadata.CategoryGrains, 0, 0, time.Hour)).Search(ctx, SearchQuery{})

		assert.ErrorIs(t, err, ErrSearchUnavailable)
	})
}

func TestSearchPushesPagingDownWithoutLocation(t *testing.T) {
	store := new(MockStore)
	store.On("Count", mock.Anything, Filter{Status: metadata.StatusAvailable, Category: metadata.CategoryBakery}).Return(25, nil).Once()
	store.On("FindMatching", mock.Anything, Filter{
		Status:   metadata.StatusAvailable,
		Category: metadata.CategoryBakery,
		Order:    OrderNewest,
		Limit:    10,
		Offset:   10,
	}).Return([]models.Donation{}, nil).Once()
	service := NewSearchService(store, zap.NewNop(), DefaultSearchDefaults)

	result, err := service.Search(context.Background(), SearchQuery{Category: metadata.CategoryBakery, Page: 2})

	require.NoError(t, err)
	assert.Equal(t, models.Pagination{Total: 25, Pages: 3, Current: 2, Limit: 10}, result.Pagination)
	store.AssertExpectations(t)
}

func TestListDonorDonations(t *testing.T) {
	mine := newDonation("mine", "Rice", metadata.CategoryGrains, 0, 0, time.Hour)
	mine.DonorID = "donor-7"
	mineReserved := newDonation("mine-reserved", "Rice", metadata.CategoryGrains, 0, 0, 2*time.Hour)
	mineReserved.DonorID = "donor-7"
	mineReserved.Status = metadata.StatusReserved
	theirs := newDonation("theirs", "Rice", metadata.CategoryGrains, 0, 0, time.Hour)

	result, err := newTestService(mine, mineReserved, theirs).ListDonorDonations(context.Background(), "donor-7", 0, 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"mine", "mine-reserved"}, ids(result.Donations))
	assert.Equal(t, models.Pagination{Total: 2, Pages: 1, Current: 1, Limit: 10}, result.Pagination)
}

func TestGetDonation(t *testing.T) {
	service := newTestService(newDonation("A", "Rice", metadata.CategoryGrains, 0, 0, time.Hour))

	donation, err := service.GetDonation(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "A", donation.ID)

	_, err = service.GetDonation(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrDonationNotFound)
}
