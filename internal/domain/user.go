package domain

import "time"

// User: покупатель. UID выдаётся внешним провайдером авторизации.
type User struct {
	ID          int64
	UID         string
	Name        string
	PhoneNumber string
	Email       string
	Address     string
	CreatedAt   time.Time
}

func NewUser(uid, name, phone, email, address string) *User {
	return &User{
		UID:         uid,
		Name:        name,
		PhoneNumber: phone,
		Email:       email,
		Address:     address,
	}
}
