package services

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"ledgerProject/models"
)

// CreateAccountDTO представляет данные для создания счета
type CreateAccountDTO struct {
	Name             string          `json:"name" validate:"required,min=2,max=100"`
	Type             string          `json:"type" validate:"required,min=2,max=30"`
	NetWorthCategory string          `json:"net_worth_category" validate:"omitempty,oneof=ASSET LIABILITY"`
	InitialBalance   decimal.Decimal `json:"initial_balance"`
	Color            string          `json:"color" validate:"omitempty,max=20"`
}

// AccountService предоставляет методы для работы со счетами
type AccountService struct {
	store     LedgerStore
	validator *validator.Validate
	anchorKey []byte
}

// NewAccountService создает новый экземпляр AccountService
func NewAccountService(store LedgerStore, anchorKey []byte) *AccountService {
	return &AccountService{
		store:     store,
		validator: validator.New(),
		anchorKey: anchorKey,
	}
}

// Create создает счет вместе с якорем начального пополнения: стартовый
// баланс фиксируется контрольной точкой, а не висит только в кэше
func (s *AccountService) Create(tenantID uint, dto CreateAccountDTO) (*models.Account, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, validationError(err)
	}

	category := models.NetWorthCategory(dto.NetWorthCategory)
	if category == "" {
		category = models.NetWorthAsset
	}

	today := DateOnly(time.Now())
	account := &models.Account{
		TenantID:         tenantID,
		Name:             dto.Name,
		Type:             dto.Type,
		NetWorthCategory: category,
		Balance:          dto.InitialBalance,
		BalanceDate:      today,
		Color:            dto.Color,
		IsActive:         true,
	}

	err := s.store.RunAtomic(func(tx LedgerStore) error {
		if err := tx.CreateAccount(account); err != nil {
			return err
		}

		anchor := &models.BalanceAnchor{
			AccountID:   account.ID,
			TenantID:    tenantID,
			Balance:     dto.InitialBalance,
			AnchorDate:  today,
			Description: "Начальный баланс счета",
		}
		StampAnchor(anchor, s.anchorKey)
		return tx.CreateAnchor(anchor)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GetById возвращает счет арендатора
func (s *AccountService) GetById(accountID, tenantID uint) (*models.Account, error) {
	return s.store.ReadAccount(accountID, tenantID)
}

// GetAllByTenant возвращает все счета арендатора
func (s *AccountService) GetAllByTenant(tenantID uint) ([]models.Account, error) {
	return s.store.FindAccounts(tenantID)
}
