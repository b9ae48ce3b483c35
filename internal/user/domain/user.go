package domain

import "time"

// User is the full row, including the stored hash. Only repositories and the
// auth service see it; everything outward-facing uses Profile or Summary.
type User struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	JoinedAt     time.Time
	LastLoginAt  time.Time
}

type Profile struct {
	Username    string
	FirstName   string
	LastName    string
	Phone       string
	JoinedAt    time.Time
	LastLoginAt time.Time
}

type Summary struct {
	Username  string
	FirstName string
	LastName  string
	Phone     string
}

func (u User) Profile() Profile {
	return Profile{
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		JoinedAt:    u.JoinedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

func (u User) Summary() Summary {
	return Summary{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}
