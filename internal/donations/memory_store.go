package donations

import (
	"context"
	"sort"
	"sync"

	"foodshare/pkg/models"
)

// MemoryStore keeps donations in process. It backs DB_DRIVER=memory and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	donations []models.Donation
}

func NewMemoryStore(donations ...models.Donation) *MemoryStore {
	s := &MemoryStore{}
	for _, d := range donations {
		s.Add(d)
	}
	return s
}

func (s *MemoryStore) Add(donation models.Donation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	donation.Distance = nil
	s.donations = append(s.donations, copyDonation(donation))
}

func (s *MemoryStore) FindMatching(ctx context.Context, filter Filter) ([]models.Donation, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.Donation{}
	for i := range s.donations {
		if filter.Matches(&s.donations[i]) {
			result = append(result, copyDonation(s.donations[i]))
		}
	}

	if filter.Order == OrderNewest {
		sort.SliceStable(result, func(i, j int) bool {
			return newerFirst(&result[i], &result[j])
		})
	}

	start := filter.Offset
	if start > len(result) {
		return []models.Donation{}, nil
	}
	end := len(result)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}

	return result[start:end], nil
}

func (s *MemoryStore) Count(ctx context.Context, filter Filter) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for i := range s.donations {
		if filter.Matches(&s.donations[i]) {
			count++
		}
	}

	return count, nil
}

func (s *MemoryStore) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.donations {
		if s.donations[i].ID == id {
			donation := copyDonation(s.donations[i])
			return &donation, nil
		}
	}

	return nil, ErrDonationNotFound
}

func copyDonation(d models.Donation) models.Donation {
	if d.Donor != nil {
		donor := *d.Donor
		d.Donor = &donor
	}
	d.Images = append([]string{}, d.Images...)
	return d
}

// newerFirst orders by creation time descending with the id as a stable tie-break.
func newerFirst(a, b *models.Donation) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}
