package domain

import "time"

// Admin: администратор магазина.
type Admin struct {
	ID        int64
	UID       string
	Name      string
	Phone     string
	Email     string
	CreatedAt time.Time
}

func NewAdmin(uid, name, phone, email string) *Admin {
	return &Admin{
		UID:   uid,
		Name:  name,
		Phone: phone,
		Email: email,
	}
}
