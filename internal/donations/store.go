package donations

import (
	"context"
	"errors"

	"foodshare/pkg/models"
)

var (
	// ErrSearchUnavailable is the only error a search returns; the cause is logged.
	ErrSearchUnavailable = errors.New("search unavailable")
	ErrDonationNotFound  = errors.New("donation not found")
)

// Store is the read side of the donation collection.
type Store interface {
	FindMatching(ctx context.Context, filter Filter) ([]models.Donation, error)
	Count(ctx context.Context, filter Filter) (int, error)
	GetDonation(ctx context.Context, id string) (*models.Donation, error)
}
