package models

import "time"

type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Email            string    `gorm:"type:varchar(254);not null;uniqueIndex" json:"email"`
	FirstName        string    `gorm:"type:varchar(50)" json:"first_name"`
	LastName         string    `gorm:"type:varchar(50)" json:"last_name"`
	StripeCustomerID string    `gorm:"type:varchar(64);index" json:"-"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"max=50"`
	LastName  string `json:"last_name" binding:"max=50"`
}

type UpdateEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}
