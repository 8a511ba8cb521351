package services

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"ledgerProject/models"
)

// CreateTransactionDTO представляет данные для создания транзакции.
// Сумма принимается как точный десятичный тип и уже несет знак.
type CreateTransactionDTO struct {
	AccountID   uint            `json:"account_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Type        string          `json:"type" validate:"required,oneof=INCOME EXPENSE TRANSFER"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	CategoryID  *uint           `json:"category_id"`
	Merchant    string          `json:"merchant" validate:"omitempty,max=255"`
	Description string          `json:"description" validate:"omitempty,max=255"`
	IsRecurring bool            `json:"is_recurring"`
}

// UpdateTransactionDTO представляет изменяемые поля транзакции
type UpdateTransactionDTO struct {
	Amount      *decimal.Decimal `json:"amount"`
	Date        *string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description *string          `json:"description" validate:"omitempty,max=255"`
}

// TransactionService предоставляет методы для работы с транзакциями леджера.
// Любая мутация меняет кэшированный баланс счета в той же транзакции
// хранилища; записи с датой не позже последнего якоря кэш не трогают —
// их поглощает якорь.
type TransactionService struct {
	store     LedgerStore
	validator *validator.Validate
}

// NewTransactionService создает новый экземпляр TransactionService
func NewTransactionService(store LedgerStore) *TransactionService {
	return &TransactionService{
		store:     store,
		validator: validator.New(),
	}
}

// cacheEffect возвращает вклад транзакции в кэшированный баланс: ноль, если
// дата транзакции не позже даты последнего якоря
func cacheEffect(anchor *models.BalanceAnchor, date time.Time, amount decimal.Decimal, txType string) decimal.Decimal {
	if anchor != nil && !DateOnly(date).After(DateOnly(anchor.AnchorDate)) {
		return decimal.Zero
	}
	return Contribution(amount, TransactionType(txType))
}

// Create создает транзакцию и синхронно сдвигает кэшированный баланс
func (s *TransactionService) Create(tenantID uint, dto CreateTransactionDTO) (*models.Transaction, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, validationError(err)
	}

	date, err := time.Parse("2006-01-02", dto.Date)
	if err != nil {
		return nil, ErrInvalidRange
	}

	txn := &models.Transaction{
		AccountID:   dto.AccountID,
		TenantID:    tenantID,
		Amount:      dto.Amount,
		Type:        dto.Type,
		Date:        DateOnly(date),
		CategoryID:  dto.CategoryID,
		Merchant:    dto.Merchant,
		Description: dto.Description,
		IsRecurring: dto.IsRecurring,
	}

	err = s.store.RunAtomic(func(tx LedgerStore) error {
		account, err := tx.ReadAccount(dto.AccountID, tenantID)
		if err != nil {
			return err
		}

		if err := tx.CreateTransaction(txn); err != nil {
			return err
		}

		anchor, err := tx.FindLatestAnchor(dto.AccountID, tenantID, nil)
		if err != nil {
			return err
		}

		effect := cacheEffect(anchor, txn.Date, txn.Amount, txn.Type)
		if effect.IsZero() {
			return nil
		}
		return tx.UpdateAccountBalance(account, account.Balance.Add(effect), account.BalanceDate)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Update изменяет сумму, дату или описание транзакции и переносит разницу
// вкладов на кэшированный баланс
func (s *TransactionService) Update(tenantID, id uint, dto UpdateTransactionDTO) (*models.Transaction, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, validationError(err)
	}

	var updated *models.Transaction
	err := s.store.RunAtomic(func(tx LedgerStore) error {
		txn, err := tx.ReadTransaction(id, tenantID)
		if err != nil {
			return err
		}

		account, err := tx.ReadAccount(txn.AccountID, tenantID)
		if err != nil {
			return err
		}

		anchor, err := tx.FindLatestAnchor(txn.AccountID, tenantID, nil)
		if err != nil {
			return err
		}

		oldEffect := cacheEffect(anchor, txn.Date, txn.Amount, txn.Type)

		if dto.Amount != nil {
			txn.Amount = *dto.Amount
		}
		if dto.Date != nil {
			date, err := time.Parse("2006-01-02", *dto.Date)
			if err != nil {
				return ErrInvalidRange
			}
			txn.Date = DateOnly(date)
		}
		if dto.Description != nil {
			txn.Description = *dto.Description
		}

		if err := tx.SaveTransaction(txn); err != nil {
			return err
		}

		newEffect := cacheEffect(anchor, txn.Date, txn.Amount, txn.Type)
		delta := newEffect.Sub(oldEffect)
		if !delta.IsZero() {
			if err := tx.UpdateAccountBalance(account, account.Balance.Add(delta), account.BalanceDate); err != nil {
				return err
			}
		}

		updated = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete удаляет транзакцию; удаленная запись исчезает из всех будущих
// реконструкций, кэш откатывается на ее вклад
func (s *TransactionService) Delete(tenantID, id uint) error {
	return s.store.RunAtomic(func(tx LedgerStore) error {
		txn, err := tx.ReadTransaction(id, tenantID)
		if err != nil {
			return err
		}

		account, err := tx.ReadAccount(txn.AccountID, tenantID)
		if err != nil {
			return err
		}

		anchor, err := tx.FindLatestAnchor(txn.AccountID, tenantID, nil)
		if err != nil {
			return err
		}

		if err := tx.DeleteTransaction(txn); err != nil {
			return err
		}

		effect := cacheEffect(anchor, txn.Date, txn.Amount, txn.Type)
		if effect.IsZero() {
			return nil
		}
		return tx.UpdateAccountBalance(account, account.Balance.Sub(effect), account.BalanceDate)
	})
}

// List возвращает транзакции счета за [from, to]
func (s *TransactionService) List(accountID, tenantID uint, from, to *time.Time) ([]models.Transaction, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, ErrInvalidRange
	}
	if _, err := s.store.ReadAccount(accountID, tenantID); err != nil {
		return nil, err
	}
	return s.store.FindTransactions(accountID, tenantID, from, to)
}
