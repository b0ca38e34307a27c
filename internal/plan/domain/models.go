package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Plan is a product speed tier; Name matches the white glove feed verbatim.
type Plan struct {
	ID               snowflake.ID    `json:"id" gorm:"primaryKey"`
	Name             string          `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:ux_plans_name"`
	CommissionAmount decimal.Decimal `json:"commission_amount" gorm:"type:numeric(12,2);not null;default:0"`
	CreatedAt        time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt        time.Time       `json:"updated_at" gorm:"not null"`
}

func (Plan) TableName() string { return "plans" }
