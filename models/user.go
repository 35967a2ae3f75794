package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/config"
	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User is a principal: one fixed role, CRM or ADMIN. The role decides which
// sale rows are visible and mutable.
type User struct {
	ID           int       `gorm:"primary_key" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"size:20;not null" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hashed, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
}

type NewUser struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     Role   `json:"role"`
}

type UpdateUser struct {
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// Authenticate checks credentials and returns the user plus a signed token.
func Authenticate(ctx context.Context, username, password string) (*User, string, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", errors.New("invalid credentials")
		}
		return nil, "", err
	}
	if err := checkPassword(user.PasswordHash, password); err != nil {
		return nil, "", errors.New("invalid credentials")
	}
	token, err := utils.JwtGenerate(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(input.Username)
	role := input.Role
	if role == "" {
		role = RoleCRM
	}
	if username == "" || input.Password == "" || !role.IsValid() {
		return nil, errors.New("provide username, password, and valid role")
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := User{Username: username, PasswordHash: hash, Role: role}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, errors.New("username already exists")
	}
	return &user, nil
}

func UpdateUserAccount(ctx context.Context, id int, input *UpdateUser) (*User, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Password != "" {
		hash, err := hashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}
	if input.Role.IsValid() {
		updates["role"] = input.Role
	}
	if len(updates) == 0 {
		return &user, nil
	}
	if err := db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func DeleteUser(ctx context.Context, id int) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	db := config.GetDB()
	result := db.WithContext(ctx).Delete(&User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

func GetUsers(ctx context.Context) ([]*User, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	db := config.GetDB()
	var users []*User
	if err := db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SeedUsers installs the default accounts when missing.
func SeedUsers() error {
	db := config.GetDB()
	ensure := func(username, password string, role Role) error {
		var n int64
		if err := db.Model(&User{}).Where("username = ?", username).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		hash, err := hashPassword(password)
		if err != nil {
			return err
		}
		return db.Create(&User{Username: username, PasswordHash: hash, Role: role}).Error
	}
	if err := ensure("vasu", "kaka", RoleCRM); err != nil {
		return err
	}
	return ensure("admin", "admin", RoleAdmin)
}
