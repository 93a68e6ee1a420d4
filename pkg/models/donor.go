package models

// Donor is the public summary of a donation owner.
type Donor struct {
	ID         string `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	Phone      string `json:"phone,omitempty" db:"phone"`
	Avatar     string `json:"avatar,omitempty" db:"avatar"`
	IsVerified bool   `json:"is_verified" db:"is_verified"`
}
