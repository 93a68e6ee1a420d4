package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"foodshare/internal/repository"
	custom_error "foodshare/pkg/errors"
	"foodshare/pkg/metadata"
	"foodshare/pkg/models"
	"foodshare/pkg/roles"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

// User is a seeded account row. Only donors appear on donations.
type User struct {
	ID         string    `db:"id"`
	Email      string    `db:"email"`
	Name       string    `db:"name"`
	Phone      string    `db:"phone"`
	Role       string    `db:"role"`
	IsVerified bool      `db:"is_verified"`
	Address    string    `db:"address"`
	Latitude   float64   `db:"latitude"`
	Longitude  float64   `db:"longitude"`
	CreatedAt  time.Time `db:"created_at"`
}

type DataSet struct {
	Users     []User
	Donations []models.Donation
}

// Fixtures returns the Malang sample data with fresh ids. Times are relative to now.
func Fixtures(now time.Time) DataSet {
	now = now.UTC().Truncate(time.Second)

	admin := newUser("admin@foodrescue.com", "Admin User", "+62812345678", roles.Admin, "Malang City Center", -7.9666, 112.6326, now)
	restaurant := newUser("donor1@example.com", "Sarah Restaurant", "+62823456789", roles.Donor, "Jl. Ijen No. 25, Malang", -7.9797, 112.6304, now)
	bakery := newUser("donor2@example.com", "Fresh Market Bakery", "+62834567890", roles.Donor, "Jl. Veteran No. 15, Malang", -7.9756, 112.6244, now)
	family := newUser("recipient1@example.com", "Ahmad Families", "+62845678901", roles.Recipient, "Jl. Soekarno Hatta No. 50, Malang", -7.9344, 112.6069, now)
	community := newUser("recipient2@example.com", "Community Center Malang", "+62856789012", roles.Recipient, "Jl. Mayjen Panjaitan No. 20, Malang", -7.9518, 112.6130, now)

	day := 24 * time.Hour
	donations := []models.Donation{
		newDonation(bakery, "Fresh Bread and Pastries",
			"Daily leftover bread, croissants, and pastries from our bakery. All items are fresh and safe to consume. Perfect for families or community centers.",
			metadata.CategoryBakery, 20, "pieces", now.Add(2*day), metadata.StatusAvailable, now.Add(-4*time.Hour)),
		newDonation(restaurant, "Cooked Rice with Side Dishes",
			"Prepared meals including rice, vegetables, and protein. Cooked fresh today and properly stored. Each portion can feed 1-2 people.",
			metadata.CategoryPreparedMeals, 15, "portions", now.Add(day), metadata.StatusAvailable, now.Add(-3*time.Hour)),
		newDonation(restaurant, "Fresh Vegetables Bundle",
			"Mixed fresh vegetables including carrots, cabbage, spinach, and tomatoes. All vegetables are in good condition and washed.",
			metadata.CategoryVegetables, 5, "kg", now.Add(3*day), metadata.StatusAvailable, now.Add(-2*time.Hour)),
		newDonation(bakery, "Assorted Fruits",
			"Fresh fruits including apples, bananas, oranges, and local seasonal fruits. All fruits are ripe and ready to eat.",
			metadata.CategoryFruits, 3, "kg", now.Add(2*day), metadata.StatusReserved, now.Add(-time.Hour)),
	}

	return DataSet{
		Users:     []User{admin, restaurant, bakery, family, community},
		Donations: donations,
	}
}

func newUser(email, name, phone string, role roles.Role, address string, lat, lon float64, now time.Time) User {
	return User{
		ID:         uuid.NewString(),
		Email:      email,
		Name:       name,
		Phone:      phone,
		Role:       role.String(),
		IsVerified: true,
		Address:    address,
		Latitude:   lat,
		Longitude:  lon,
		CreatedAt:  now,
	}
}

func newDonation(donor User, title, description string, category metadata.Category, quantity int, unit string, expiry time.Time, status metadata.Status, createdAt time.Time) models.Donation {
	return models.Donation{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Category:    category,
		Quantity:    quantity,
		Unit:        unit,
		Expiry:      expiry,
		Images:      []string{},
		Address:     donor.Address,
		Latitude:    donor.Latitude,
		Longitude:   donor.Longitude,
		Status:      status,
		IsVerified:  true,
		DonorID:     donor.ID,
		Donor: &models.Donor{
			ID:         donor.ID,
			Name:       donor.Name,
			Phone:      donor.Phone,
			IsVerified: donor.IsVerified,
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// Load replaces the donations and users tables with the data set in one transaction.
func Load(ctx context.Context, r *repository.Repository, data DataSet) error {
	return repository.WithTransaction(ctx, r.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		if _, err := tx.Delete("donations").Executor().ExecContext(ctx); err != nil {
			return fmt.Errorf("clear donations: %w", err)
		}
		if _, err := tx.Delete("users").Executor().ExecContext(ctx); err != nil {
			return fmt.Errorf("clear users: %w", err)
		}

		if len(data.Users) > 0 {
			if _, err := tx.Insert("users").Rows(data.Users).Prepared(true).Executor().ExecContext(ctx); err != nil {
				return fmt.Errorf("insert users: %w", custom_error.FromDBError(err))
			}
		}

		for _, donation := range data.Donations {
			images, err := json.Marshal(donation.Images)
			if err != nil {
				return fmt.Errorf("encode images of %s: %w", donation.ID, err)
			}

			_, err = tx.Insert("donations").Rows(goqu.Record{
				"id":          donation.ID,
				"title":       donation.Title,
				"description": donation.Description,
				"category":    string(donation.Category),
				"quantity":    donation.Quantity,
				"unit":        donation.Unit,
				"expiry":      donation.Expiry,
				"images":      string(images),
				"address":     donation.Address,
				"latitude":    donation.Latitude,
				"longitude":   donation.Longitude,
				"status":      string(donation.Status),
				"is_verified": donation.IsVerified,
				"donor_id":    donation.DonorID,
				"created_at":  donation.CreatedAt,
				"updated_at":  donation.UpdatedAt,
			}).Prepared(true).Executor().ExecContext(ctx)
			if err != nil {
				return fmt.Errorf("insert donation %s: %w", donation.Title, custom_error.FromDBError(err))
			}
		}

		return nil
	})
}
