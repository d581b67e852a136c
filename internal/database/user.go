package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// User represents a provisioned user in the directory.
// Rows are hard-deleted, so there is no gorm.DeletedAt field and a freed email can be reused.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateUser inserts a new user. The email is stored as given, callers normalize it.
func (c *Client) CreateUser(ctx context.Context, username, email string) (*User, error) {
	user := User{
		Username: username,
		Email:    email,
	}
	if err := c.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateEmail
		}
		log.Error("failed to create user", "error", err)
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Error("failed to get user by ID", "error", err)
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Error("failed to get user by email", "error", err)
		return nil, err
	}
	return &user, nil
}

// GetAllUsers returns every user ordered by ID.
func (c *Client) GetAllUsers(ctx context.Context) ([]User, error) {
	users := []User{}
	if err := c.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		log.Error("failed to get all users", "error", err)
		return nil, err
	}
	return users, nil
}

// DeleteUser removes the user with the given ID and reports whether it existed.
func (c *Client) DeleteUser(ctx context.Context, id uint) (bool, error) {
	result := c.db.WithContext(ctx).Delete(&User{}, id)
	if result.Error != nil {
		log.Error("failed to delete user", "error", result.Error)
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (c *Client) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&User{}).Count(&count).Error; err != nil {
		log.Error("failed to count users", "error", err)
		return 0, err
	}
	return count, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
