package donations

import (
	"context"
	"fmt"

	"foodshare/internal/repository"
	"foodshare/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

var donationAliases = map[string]string{
	"status":      "d.status",
	"category":    "d.category",
	"donor_id":    "d.donor_id",
	"title":       "d.title",
	"description": "d.description",
	"address":     "d.address",
	"latitude":    "d.latitude",
	"longitude":   "d.longitude",
}

type SQLStore struct {
	repository *repository.Repository
	logger     *zap.Logger
}

func NewSQLStore(r *repository.Repository, logger *zap.Logger) *SQLStore {
	return &SQLStore{
		repository: r,
		logger:     logger,
	}
}

func (s *SQLStore) FindMatching(ctx context.Context, filter Filter) ([]models.Donation, error) {
	query := s.findQuery(filter)

	var flatDonations []models.FlatDonationRecord
	if err := query.Executor().ScanStructsContext(ctx, &flatDonations); err != nil {
		return nil, fmt.Errorf("unable to select donations from database: %w", err)
	}

	donations := make([]models.Donation, 0, len(flatDonations))
	for _, flatDonation := range flatDonations {
		donation, err := flatDonation.TransformToDonation()
		if err != nil {
			return nil, err
		}
		donations = append(donations, donation)
	}

	s.logger.Debug("donations selected", zap.Int("count", len(donations)), zap.Bool("bounded", filter.Bounds != nil))

	return donations, nil
}

func (s *SQLStore) Count(ctx context.Context, filter Filter) (int, error) {
	count, err := s.countQuery(filter).CountContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("unable to count donations: %w", err)
	}

	return int(count), nil
}

func (s *SQLStore) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	var flatDonation models.FlatDonationRecord
	found, err := s.donationQuery().
		Where(goqu.I("d.id").Eq(id)).
		Executor().
		ScanStructContext(ctx, &flatDonation)
	if err != nil {
		return nil, fmt.Errorf("unable to select donation %s: %w", id, err)
	}
	if !found {
		return nil, ErrDonationNotFound
	}

	donation, err := flatDonation.TransformToDonation()
	if err != nil {
		return nil, err
	}

	return &donation, nil
}

func (s *SQLStore) findQuery(filter Filter) *goqu.SelectDataset {
	query := s.donationQuery().Where(filter.BuildConditions(donationAliases))

	if filter.Order == OrderNewest {
		query = query.Order(goqu.I("d.created_at").Desc(), goqu.I("d.id").Asc())
	}
	if filter.Limit > 0 {
		query = query.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint(filter.Offset))
	}

	return query
}

func (s *SQLStore) countQuery(filter Filter) *goqu.SelectDataset {
	return s.repository.GoquDBWrapper.
		From(goqu.T("donations").As("d")).
		Where(filter.BuildConditions(donationAliases)).
		Prepared(true)
}

func (s *SQLStore) donationQuery() *goqu.SelectDataset {
	return s.repository.GoquDBWrapper.
		From(goqu.T("donations").As("d")).
		LeftJoin(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("d.donor_id")))).
		Select(
			goqu.I("d.id"),
			goqu.I("d.title"),
			goqu.I("d.description"),
			goqu.I("d.category"),
			goqu.I("d.quantity"),
			goqu.I("d.unit"),
			goqu.I("d.expiry"),
			goqu.I("d.images"),
			goqu.I("d.address"),
			goqu.I("d.latitude"),
			goqu.I("d.longitude"),
			goqu.I("d.status"),
			goqu.I("d.is_verified"),
			goqu.I("d.donor_id"),
			goqu.I("d.created_at"),
			goqu.I("d.updated_at"),
			goqu.I("u.name").As("donor_name"),
			goqu.I("u.phone").As("donor_phone"),
			goqu.I("u.avatar").As("donor_avatar"),
			goqu.I("u.is_verified").As("donor_verified"),
		).
		Prepared(true)
}
