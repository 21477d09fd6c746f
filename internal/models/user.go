package models

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

type User struct {
	Model
	Email        string   `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName     string   `gorm:"size:255" json:"fullName"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(20);not null" json:"role"`
}
