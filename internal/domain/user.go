package domain

import "time"

// User identity and shipping fields. PasswordHash never leaves the API: the
// JSON tag is "-" and the order expansion selects UserSummary instead.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	Zip          string    `json:"zip"`
	Country      string    `json:"country"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Summary returns the public selection of u's fields.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone,
		Zip:     u.Zip,
		Country: u.Country,
	}
}
