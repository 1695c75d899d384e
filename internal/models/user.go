package models

import "time"

// User is a local storefront account.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id" validate:"omitempty,uuid"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" bson:"username" validate:"required,min=3,max=100"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" bson:"email" validate:"required,email"`
	Password  string    `json:"password,omitempty" gorm:"type:varchar(255)" bson:"password" validate:"required,min=6"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
