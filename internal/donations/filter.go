package donations

import (
	"strings"

	"foodshare/internal/repository"
	"foodshare/pkg/geo"
	"foodshare/pkg/metadata"
	"foodshare/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

var _ repository.QueryBuilder = (*Filter)(nil)

type Order int

const (
	// OrderNone leaves ordering to the caller.
	OrderNone Order = iota
	// OrderNewest sorts by creation time descending, then by id.
	OrderNewest
)

// Filter is the predicate a Store evaluates. Zero values disable a condition.
type Filter struct {
	Status   metadata.Status
	Category metadata.Category
	Term     string
	DonorID  string
	Bounds   *geo.Bounds
	Order    Order
	Limit    int
	Offset   int
}

// Matches evaluates the filter conditions against a single donation. Order,
// Limit and Offset are not part of the predicate.
func (f *Filter) Matches(d *models.Donation) bool {
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	if f.Category != "" && d.Category != f.Category {
		return false
	}
	if f.DonorID != "" && d.DonorID != f.DonorID {
		return false
	}
	if f.Term != "" {
		term := strings.ToLower(f.Term)
		if !strings.Contains(strings.ToLower(d.Title), term) &&
			!strings.Contains(strings.ToLower(d.Description), term) &&
			!strings.Contains(strings.ToLower(d.Address), term) {
			return false
		}
	}
	if f.Bounds != nil && !f.Bounds.Contains(d.Point()) {
		return false
	}

	return true
}

func (f *Filter) BuildConditions(aliases map[string]string) exp.ExpressionList {
	var conditions []exp.Expression

	if f.Status != "" {
		conditions = append(conditions, repository.Column(aliases, "status").Eq(string(f.Status)))
	}
	if f.Category != "" {
		conditions = append(conditions, repository.Column(aliases, "category").Eq(string(f.Category)))
	}
	if f.DonorID != "" {
		conditions = append(conditions, repository.Column(aliases, "donor_id").Eq(f.DonorID))
	}
	if f.Term != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Term)) + "%"
		conditions = append(conditions, goqu.Or(
			containsIgnoreCase(repository.Column(aliases, "title"), pattern),
			containsIgnoreCase(repository.Column(aliases, "description"), pattern),
			containsIgnoreCase(repository.Column(aliases, "address"), pattern),
		))
	}
	if f.Bounds != nil {
		conditions = append(conditions, boundsConditions(aliases, f.Bounds)...)
	}

	return goqu.And(conditions...)
}

func boundsConditions(aliases map[string]string, b *geo.Bounds) []exp.Expression {
	conditions := []exp.Expression{
		repository.Column(aliases, "latitude").Between(goqu.Range(b.Latitude.Min, b.Latitude.Max)),
	}

	longitude := repository.Column(aliases, "longitude")
	switch len(b.Longitudes) {
	case 0:
	case 1:
		conditions = append(conditions, longitude.Between(goqu.Range(b.Longitudes[0].Min, b.Longitudes[0].Max)))
	default:
		ranges := make([]exp.Expression, 0, len(b.Longitudes))
		for _, r := range b.Longitudes {
			ranges = append(ranges, longitude.Between(goqu.Range(r.Min, r.Max)))
		}
		conditions = append(conditions, goqu.Or(ranges...))
	}

	return conditions
}

// LOWER + LIKE with an explicit escape renders the same on postgres and sqlite.
func containsIgnoreCase(column exp.IdentifierExpression, pattern string) exp.LiteralExpression {
	return goqu.L(`LOWER(?) LIKE ? ESCAPE '\'`, column, pattern)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
