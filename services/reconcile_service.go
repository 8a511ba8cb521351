package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"ledgerProject/models"
	"ledgerProject/utils"
)

// AdjustmentDescription зарезервированное описание системной корректирующей
// транзакции; по нему корректировки отличимы от пользовательских записей
const AdjustmentDescription = "Корректировка баланса по результатам сверки"

// ReconciliationResult представляет результат сверки счета
type ReconciliationResult struct {
	Account         *models.Account       `json:"account"`
	Adjustment      *models.Transaction   `json:"adjustment_transaction"` // nil при нулевой дельте
	Anchor          *models.BalanceAnchor `json:"new_anchor"`
	PreviousBalance decimal.Decimal       `json:"previous_balance"`
	Delta           decimal.Decimal       `json:"delta"`
}

// ReconcileService выравнивает расчетный баланс счета с балансом выписки:
// корректирующая транзакция, новый якорь и обновление кэша — одним коммитом
type ReconcileService struct {
	store     LedgerStore
	email     *EmailService
	anchorKey []byte
}

// NewReconcileService создает новый экземпляр ReconcileService
func NewReconcileService(store LedgerStore, email *EmailService, anchorKey []byte) *ReconcileService {
	return &ReconcileService{
		store:     store,
		email:     email,
		anchorKey: anchorKey,
	}
}

// Reconcile сверяет счет с балансом выписки. Все записи выполняются одной
// транзакцией хранилища: при любой ошибке не остается ни корректировки без
// якоря, ни якоря без обновленного кэша. Нулевая дельта — штатный исход:
// корректировка не создается, якорь пишется все равно.
func (s *ReconcileService) Reconcile(accountID, tenantID uint, newBalance decimal.Decimal, reconcileDate time.Time) (*ReconciliationResult, error) {
	reconcileDate = DateOnly(reconcileDate)

	var result *ReconciliationResult
	err := s.store.RunAtomic(func(tx LedgerStore) error {
		account, err := tx.ReadAccount(accountID, tenantID)
		if err != nil {
			return err
		}

		current, _, err := balanceAsOf(tx, account)
		if err != nil {
			return err
		}

		delta := newBalance.Sub(current)

		var adjustment *models.Transaction
		if !delta.IsZero() {
			adjustment = &models.Transaction{
				AccountID:   accountID,
				TenantID:    tenantID,
				Amount:      delta,
				Type:        string(TransactionTypeTransfer),
				Date:        reconcileDate,
				Description: AdjustmentDescription,
			}
			if err := tx.CreateTransaction(adjustment); err != nil {
				return err
			}
		}

		anchor := &models.BalanceAnchor{
			AccountID:   accountID,
			TenantID:    tenantID,
			Balance:     newBalance,
			AnchorDate:  reconcileDate,
			Description: "Сверка с выпиской",
		}
		StampAnchor(anchor, s.anchorKey)
		if err := tx.CreateAnchor(anchor); err != nil {
			return err
		}

		if err := tx.UpdateAccountBalance(account, newBalance, reconcileDate); err != nil {
			return err
		}

		result = &ReconciliationResult{
			Account:         account,
			Adjustment:      adjustment,
			Anchor:          anchor,
			PreviousBalance: current,
			Delta:           delta,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConcurrentModification) {
			utils.GetMetrics().RecordConcurrentConflict()
		}
		return nil, err
	}

	utils.GetMetrics().RecordReconciliation(result.Adjustment != nil)
	utils.LogInfo("сверка счета %d: %s -> %s (дельта %s)",
		accountID, result.PreviousBalance.StringFixed(2), newBalance.StringFixed(2), result.Delta.StringFixed(2))

	if s.email != nil {
		if err := s.email.SendReconciliationNotification(result.Account.Name, result.PreviousBalance, newBalance, result.Delta); err != nil {
			utils.LogError("не удалось отправить уведомление о сверке: %v", err)
		}
	}
	return result, nil
}
