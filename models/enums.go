package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/config"
	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/utils"
)

type Role string

const (
	RoleCRM   Role = "CRM"
	RoleAdmin Role = "ADMIN"
)

func (r Role) IsValid() bool {
	return r == RoleCRM || r == RoleAdmin
}

// Sale types are an option table, but OTP drives the milestone split and is
// special-cased by the calculator. Anything else follows the regular
// 25%-at-plan-approval schedule.
const (
	SaleTypeOTP     = "OTP"
	SaleTypeRegular = "R"
)

const (
	TitleJuniorSalesPerson = "Junior Sales Person"
	TitleSeniorSalesPerson = "Senior Sales Person"
)

// SpgOption and SaleTypeOption back the classification dropdowns.
// Values are admin-managed; sale intake validates against them.
type SpgOption struct {
	Value string `gorm:"primaryKey;size:100" json:"value"`
}

func (SpgOption) TableName() string { return "spg_options" }

type SaleTypeOption struct {
	Value string `gorm:"primaryKey;size:100" json:"value"`
}

func (SaleTypeOption) TableName() string { return "sale_type_options" }

const (
	OptionKindSpg      = "spg"
	OptionKindSaleType = "sale_type"
)

const optionCacheTTL = 10 * time.Minute

func optionTable(kind string) (string, error) {
	switch kind {
	case OptionKindSpg:
		return SpgOption{}.TableName(), nil
	case OptionKindSaleType:
		return SaleTypeOption{}.TableName(), nil
	}
	return "", errors.New("unknown option kind")
}

// GetOptions returns the sorted option values for a kind, redis-cached.
func GetOptions(ctx context.Context, kind string) ([]string, error) {
	table, err := optionTable(kind)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0)
	redisKey := "options:" + table
	exists, err := config.GetRedisObject(redisKey, &values)
	if err == nil && exists {
		return values, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Table(table).Order("value").Pluck("value", &values).Error; err != nil {
		return nil, err
	}
	if err := config.SetRedisObject(redisKey, &values, optionCacheTTL); err != nil {
		config.LogError(config.GetLogger(), "models", "GetOptions", "cache options", table, err)
	}
	return values, nil
}

// IsValidOption reports whether value is an allowed option for kind.
func IsValidOption(ctx context.Context, kind string, value string) (bool, error) {
	values, err := GetOptions(ctx, kind)
	if err != nil {
		return false, err
	}
	for _, v := range values {
		if v == value {
			return true, nil
		}
	}
	return false, nil
}

func AddOption(ctx context.Context, kind string, value string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return utils.ErrorInvalidOption
	}
	table, err := optionTable(kind)
	if err != nil {
		return err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Table(table).Create(map[string]interface{}{"value": value}).Error; err != nil {
		return utils.ErrorInvalidOption
	}
	return config.DeleteRedisKey("options:" + table)
}

func DeleteOption(ctx context.Context, kind string, value string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	table, err := optionTable(kind)
	if err != nil {
		return err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Table(table).Where("value = ?", value).Delete(nil).Error; err != nil {
		return err
	}
	return config.DeleteRedisKey("options:" + table)
}

// SeedOptions installs the default classification and sale-type values on an
// empty database.
func SeedOptions() error {
	db := config.GetDB()

	var n int64
	if err := db.Model(&SpgOption{}).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		if err := db.Create([]SpgOption{{Value: "SPG"}, {Value: "Praneeth"}}).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&SaleTypeOption{}).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		if err := db.Create([]SaleTypeOption{{Value: SaleTypeOTP}, {Value: SaleTypeRegular}}).Error; err != nil {
			return err
		}
	}
	return nil
}

func requireAdmin(ctx context.Context) error {
	role, ok := utils.GetRoleFromContext(ctx)
	if !ok || Role(role) != RoleAdmin {
		return utils.ErrorUnauthorized
	}
	return nil
}
