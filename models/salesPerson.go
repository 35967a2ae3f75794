package models

import (
	"context"
	"errors"
	"time"

	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/config"
	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/utils"
	"gorm.io/gorm"
)

// SalesPerson is a contact-book entry owned by the principal who created it.
type SalesPerson struct {
	ID            int       `gorm:"primary_key" json:"id"`
	FullName      string    `gorm:"size:255;not null" json:"full_name" binding:"required"`
	Phone         string    `gorm:"size:50" json:"phone"`
	Email         string    `gorm:"size:100" json:"email"`
	Address       string    `gorm:"type:text" json:"address"`
	Title         string    `gorm:"size:100" json:"title"`
	PhotoPath     string    `gorm:"size:500" json:"photo_path"`
	OwnerUsername string    `gorm:"index;not null" json:"owner_username"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SalesPerson) TableName() string { return "sales_people" }

type NewSalesPerson struct {
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Title    string `json:"title"`
}

func (input *NewSalesPerson) validate() error {
	if input.Title != "" && input.Title != TitleJuniorSalesPerson && input.Title != TitleSeniorSalesPerson {
		return errors.New("title must be Junior Sales Person or Senior Sales Person")
	}
	return nil
}

func CreateSalesPerson(ctx context.Context, input *NewSalesPerson, photoPath string) (*SalesPerson, error) {
	username, _, err := principalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	person := SalesPerson{
		FullName:      input.FullName,
		Phone:         input.Phone,
		Email:         input.Email,
		Address:       input.Address,
		Title:         input.Title,
		PhotoPath:     photoPath,
		OwnerUsername: username,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&person).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func UpdateSalesPerson(ctx context.Context, id int, input *NewSalesPerson, photoPath string) (*SalesPerson, error) {
	username, _, err := principalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var person SalesPerson
	if err := db.WithContext(ctx).Where("id = ? AND owner_username = ?", id, username).First(&person).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorUnauthorized
		}
		return nil, err
	}

	updates := map[string]interface{}{
		"full_name": input.FullName,
		"phone":     input.Phone,
		"email":     input.Email,
		"address":   input.Address,
		"title":     input.Title,
	}
	if photoPath != "" {
		updates["photo_path"] = photoPath
	}
	if err := db.WithContext(ctx).Model(&person).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func DeleteSalesPerson(ctx context.Context, id int) error {
	username, _, err := principalFromContext(ctx)
	if err != nil {
		return err
	}
	db := config.GetDB()
	return db.WithContext(ctx).Where("id = ? AND owner_username = ?", id, username).Delete(&SalesPerson{}).Error
}

func GetSalesPeople(ctx context.Context) ([]*SalesPerson, error) {
	username, _, err := principalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	var people []*SalesPerson
	if err := db.WithContext(ctx).Where("owner_username = ?", username).
		Order("full_name").Find(&people).Error; err != nil {
		return nil, err
	}
	return people, nil
}

func GetSalesPerson(ctx context.Context, id int) (*SalesPerson, error) {
	username, _, err := principalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	var person SalesPerson
	if err := db.WithContext(ctx).Where("id = ? AND owner_username = ?", id, username).First(&person).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorUnauthorized
		}
		return nil, err
	}
	return &person, nil
}

// GetSalesPeopleNames feeds the intake dropdown: every distinct name,
// regardless of owner.
func GetSalesPeopleNames(ctx context.Context) ([]string, error) {
	db := config.GetDB()
	names := make([]string, 0)
	err := db.WithContext(ctx).Model(&SalesPerson{}).Distinct("full_name").
		Order("full_name").Pluck("full_name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}
