package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NetWorthCategory представляет категорию счета в чистом капитале
type NetWorthCategory string

const (
	NetWorthAsset     NetWorthCategory = "ASSET"
	NetWorthLiability NetWorthCategory = "LIABILITY"
)

// Account представляет счет с кэшированным текущим балансом.
// Поле Balance — производный кэш: оно должно совпадать с результатом
// реконструкции на текущий момент и меняется только внутри атомарных
// операций (сверка, мутации транзакций).
type Account struct {
	ID               uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID         uint             `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Name             string           `gorm:"column:name;not null;size:100" json:"name"`
	Type             string           `gorm:"column:type;not null;size:30" json:"type"`
	NetWorthCategory NetWorthCategory `gorm:"column:net_worth_category;size:20;not null;default:'ASSET'" json:"net_worth_category"`
	Balance          decimal.Decimal  `gorm:"column:balance;type:decimal(20,2);not null;default:0" json:"balance"`
	BalanceDate      time.Time        `gorm:"column:balance_date" json:"balance_date"`
	Color            string           `gorm:"column:color;size:20" json:"color"`
	IsActive         bool             `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Version          uint             `gorm:"column:version;not null;default:0" json:"-"`
	CreatedAt        time.Time        `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}
