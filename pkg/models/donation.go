package models

import (
	"encoding/json"
	"fmt"
	"time"

	"foodshare/pkg/geo"
	"foodshare/pkg/metadata"
)

type Donation struct {
	ID          string            `json:"id" db:"id"`
	Title       string            `json:"title" db:"title"`
	Description string            `json:"description" db:"description"`
	Category    metadata.Category `json:"category" db:"category"`
	Quantity    int               `json:"quantity" db:"quantity"`
	Unit        string            `json:"unit" db:"unit"`
	Expiry      time.Time         `json:"expiry" db:"expiry"`
	Images      []string          `json:"images"`
	Address     string            `json:"address" db:"address"`
	Latitude    float64           `json:"latitude" db:"latitude"`
	Longitude   float64           `json:"longitude" db:"longitude"`
	Status      metadata.Status   `json:"status" db:"status"`
	IsVerified  bool              `json:"is_verified" db:"is_verified"`
	DonorID     string            `json:"donor_id" db:"donor_id"`
	Donor       *Donor            `json:"donor,omitempty"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
	// Distance from the search origin in km, set only by radius searches.
	Distance *float64 `json:"distance,omitempty"`
}

func (d *Donation) Point() geo.Point {
	return geo.Point{Latitude: d.Latitude, Longitude: d.Longitude}
}

// FlatDonationRecord is a donation row joined with its donor.
type FlatDonationRecord struct {
	ID            string    `db:"id"`
	Title         string    `db:"title"`
	Description   string    `db:"description"`
	Category      string    `db:"category"`
	Quantity      int       `db:"quantity"`
	Unit          string    `db:"unit"`
	Expiry        time.Time `db:"expiry"`
	Images        *string   `db:"images"`
	Address       string    `db:"address"`
	Latitude      float64   `db:"latitude"`
	Longitude     float64   `db:"longitude"`
	Status        string    `db:"status"`
	IsVerified    bool      `db:"is_verified"`
	DonorID       string    `db:"donor_id"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
	DonorName     *string   `db:"donor_name"`
	DonorPhone    *string   `db:"donor_phone"`
	DonorAvatar   *string   `db:"donor_avatar"`
	DonorVerified *bool     `db:"donor_verified"`
}

func (fd *FlatDonationRecord) TransformToDonation() (Donation, error) {
	images := []string{}
	if fd.Images != nil && *fd.Images != "" {
		if err := json.Unmarshal([]byte(*fd.Images), &images); err != nil {
			return Donation{}, fmt.Errorf("failed to unmarshal images of donation %s: %w", fd.ID, err)
		}
	}

	donation := Donation{
		ID:          fd.ID,
		Title:       fd.Title,
		Description: fd.Description,
		Category:    metadata.Category(fd.Category),
		Quantity:    fd.Quantity,
		Unit:        fd.Unit,
		Expiry:      fd.Expiry,
		Images:      images,
		Address:     fd.Address,
		Latitude:    fd.Latitude,
		Longitude:   fd.Longitude,
		Status:      metadata.Status(fd.Status),
		IsVerified:  fd.IsVerified,
		DonorID:     fd.DonorID,
		CreatedAt:   fd.CreatedAt,
		UpdatedAt:   fd.UpdatedAt,
	}

	if fd.DonorName != nil {
		donation.Donor = &Donor{
			ID:         fd.DonorID,
			Name:       *fd.DonorName,
			Phone:      valueOrEmpty(fd.DonorPhone),
			Avatar:     valueOrEmpty(fd.DonorAvatar),
			IsVerified: fd.DonorVerified != nil && *fd.DonorVerified,
		}
	}

	return donation, nil
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
