package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a user's standing in the community.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// User is stored in PostgreSQL.
type User struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name"`
	Email       string    `json:"email" gorm:"uniqueIndex"`
	Role        Role      `json:"role" gorm:"type:varchar(20);default:'student';index"`
	Banned      bool      `json:"banned" gorm:"default:false"`
	FirebaseUID *string   `json:"firebase_uid,omitempty" gorm:"uniqueIndex"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) IsFaculty() bool { return u.Role == RoleFaculty }
func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }

// UserSummary is the populated form of a user reference.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Acquaintance is one direction of a symmetric friendship; both rows exist.
type Acquaintance struct {
	UserID         string    `json:"user_id" gorm:"primaryKey;type:varchar(36)"`
	AcquaintanceID string    `json:"acquaintance_id" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt      time.Time `json:"created_at"`
}

// JwtCustomClaims are the claims carried by access tokens.
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}
