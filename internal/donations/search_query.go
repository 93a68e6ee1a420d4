package donations

import (
	"math"
	"strings"

	"foodshare/pkg/geo"
	"foodshare/pkg/metadata"
	"foodshare/pkg/models"
)

// SearchDefaults are applied to missing or invalid query values.
type SearchDefaults struct {
	RadiusKm float64
	Limit    int
	MaxLimit int
}

var DefaultSearchDefaults = SearchDefaults{
	RadiusKm: 5,
	Limit:    10,
	MaxLimit: 100,
}

// SearchQuery describes a single search request. Origin is nil when no
// location filter is requested.
type SearchQuery struct {
	Status   metadata.Status
	Category metadata.Category
	Term     string
	Origin   *geo.Point
	RadiusKm float64
	Page     int
	Limit    int
}

type SearchResult struct {
	Donations  []models.Donation `json:"donations"`
	Pagination models.Pagination `json:"pagination"`
}

// Normalize fills defaults and coerces invalid values instead of rejecting them.
func (q SearchQuery) Normalize(defaults SearchDefaults) SearchQuery {
	if q.Status == "" {
		q.Status = metadata.StatusAvailable
	}
	q.Category = metadata.NormalizeCategory(string(q.Category))
	q.Term = strings.TrimSpace(q.Term)

	if q.Origin != nil && !q.Origin.Valid() {
		q.Origin = nil
	}
	if q.Origin == nil {
		q.RadiusKm = 0
	} else if math.IsNaN(q.RadiusKm) || math.IsInf(q.RadiusKm, 0) || q.RadiusKm <= 0 {
		q.RadiusKm = defaults.RadiusKm
	}

	q.Page, q.Limit = normalizePage(q.Page, q.Limit, defaults)

	return q
}

func normalizePage(page, limit int, defaults SearchDefaults) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaults.Limit
	}
	if defaults.MaxLimit > 0 && limit > defaults.MaxLimit {
		limit = defaults.MaxLimit
	}
	return page, limit
}

// offset returns (page-1)*limit, saturating instead of overflowing.
func offset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}
