package models

import (
	"time"
)

// User is a registered account. Email is the login identifier.
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"size:254;not null;uniqueIndex"`
	Username     string `gorm:"size:150;not null;uniqueIndex"`
	FirstName    string `gorm:"size:150;not null"`
	LastName     string `gorm:"size:150;not null"`
	PasswordHash string `gorm:"size:150;not null"`
	Avatar       string `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Subscription is a directed follow edge from a user to an author.
// Uniqueness is on the ordered pair; self-subscription is rejected at the
// request layer, not here.
type Subscription struct {
	ID        uint `gorm:"primaryKey;autoIncrement"`
	UserID    uint `gorm:"not null;index;uniqueIndex:idx_user_author"`
	AuthorID  uint `gorm:"not null;index;uniqueIndex:idx_user_author"`
	CreatedAt time.Time

	User   *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Subscription
func (Subscription) TableName() string {
	return "subscriptions"
}
