package domain

import "time"

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an authenticated operator of the CRM. Passwords are stored as
// bcrypt hashes and never serialized. Admin-created accounts start with
// MustChangePassword set so the temporary password is rotated on first login.
type User struct {
	ID                 uint       `json:"id"                   gorm:"primaryKey"`
	Email              string     `json:"email"                gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash       string     `json:"-"                    gorm:"type:varchar(128);not null"`
	Role               string     `json:"role"                 gorm:"type:varchar(16);not null;default:'user';check:role IN ('admin','user')"`
	MustChangePassword bool       `json:"must_change_password" gorm:"not null;default:false"`
	IsDisabled         bool       `json:"is_disabled"          gorm:"not null;default:false"`
	CreatedAt          time.Time  `json:"created_at"`
	LastLoginAt        *time.Time `json:"last_login_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }
