package entity

import (
	"time"
)

// UserRole 用户角色
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User 系统用户
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Username     string    `json:"username" gorm:"size:64;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:100;not null"`
	Name         string    `json:"name" gorm:"size:64;not null"`
	Role         string    `json:"role" gorm:"size:20;not null;default:employee"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
