package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceAnchor представляет контрольную точку: баланс счета был ровно
// Balance на дату AnchorDate. Якоря создаются сверкой, начальным
// пополнением счета или планировщиком; никогда не редактируются, новые
// якоря вытесняют старые без удаления.
type BalanceAnchor struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID   uint            `gorm:"column:account_id;not null;index:idx_anchor_account_date,priority:1" json:"account_id"`
	TenantID    uint            `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Balance     decimal.Decimal `gorm:"column:balance;type:decimal(20,2);not null" json:"balance"`
	AnchorDate  time.Time       `gorm:"column:anchor_date;not null;index:idx_anchor_account_date,priority:2" json:"anchor_date"`
	Description string          `gorm:"column:description;size:255" json:"description"`
	Signature   string          `gorm:"column:signature;size:64" json:"-"` // HMAC-штамп целостности
	CreatedAt   time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (BalanceAnchor) TableName() string {
	return "balance_anchors"
}
