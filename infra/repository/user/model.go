package user

import (
	"time"

	domain "github.com/revobank/revobank/pkg/domain/user"
)

// User is the persisted form of a user. The role is stored by name; its
// permission set lives in code.
type User struct {
	ID             uint   `gorm:"primaryKey"`
	Username       string `gorm:"type:varchar(80);uniqueIndex;not null"`
	Email          string `gorm:"type:varchar(120);uniqueIndex;not null"`
	Name           string `gorm:"type:varchar(100);not null"`
	HashedPassword string `gorm:"column:password_hash;type:varchar(200);not null"`
	Role           string `gorm:"type:varchar(50);not null;default:'customer'"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

func toModel(u *domain.User) User {
	return User{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Name:           u.Name,
		HashedPassword: u.HashedPassword,
		Role:           string(u.Role),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func toDomain(m *User) *domain.User {
	return &domain.User{
		ID:             m.ID,
		Username:       m.Username,
		Email:          m.Email,
		Name:           m.Name,
		HashedPassword: m.HashedPassword,
		Role:           domain.Role(m.Role),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
