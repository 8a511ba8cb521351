package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction представляет запись леджера. Сумма хранится уже со знаком:
// расходы отрицательные, доходы положительные, переводы — по направлению.
// Поле Type информационное и знак не переопределяет.
type Transaction struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID   uint            `gorm:"column:account_id;not null;index:idx_txn_account_date,priority:1" json:"account_id"`
	TenantID    uint            `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Type        string          `gorm:"column:type;not null;size:20" json:"type"` // INCOME, EXPENSE, TRANSFER
	Date        time.Time       `gorm:"column:date;not null;index:idx_txn_account_date,priority:2" json:"date"`
	CategoryID  *uint           `gorm:"column:category_id" json:"category_id,omitempty"`
	Merchant    string          `gorm:"column:merchant;size:255" json:"merchant,omitempty"`
	Description string          `gorm:"column:description;size:255" json:"description"`
	IsRecurring bool            `gorm:"column:is_recurring;not null;default:false" json:"is_recurring"`
	CreatedAt   time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
