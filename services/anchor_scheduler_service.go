package services

import (
	"time"

	"ledgerProject/models"
	"ledgerProject/utils"
)

// AnchorSchedulerService периодически проставляет системные якоря активным
// счетам: чем свежее якорь, тем короче окно реконструкции и тем реже
// срабатывает полный перерасчет
type AnchorSchedulerService struct {
	store           LedgerStore
	interval        time.Duration
	minTransactions int64
	anchorKey       []byte
}

// NewAnchorSchedulerService создает новый экземпляр AnchorSchedulerService
func NewAnchorSchedulerService(store LedgerStore, interval time.Duration, minTransactions int64, anchorKey []byte) *AnchorSchedulerService {
	return &AnchorSchedulerService{
		store:           store,
		interval:        interval,
		minTransactions: minTransactions,
		anchorKey:       anchorKey,
	}
}

// Start запускает планировщик якорей
func (s *AnchorSchedulerService) Start() {
	ticker := time.NewTicker(s.interval)
	go func() {
		for range ticker.C {
			if err := s.ProcessAccounts(); err != nil {
				utils.LogError("ошибка при проставлении системных якорей: %v", err)
			}
		}
	}()
}

// ProcessAccounts проходит по активным счетам и якорит накопившуюся историю
func (s *AnchorSchedulerService) ProcessAccounts() error {
	accounts, err := s.store.FindActiveAccounts()
	if err != nil {
		return err
	}

	for _, account := range accounts {
		if err := s.anchorAccount(account.ID, account.TenantID); err != nil {
			utils.LogError("не удалось поставить якорь счету %d: %v", account.ID, err)
		}
	}
	return nil
}

// anchorAccount ставит системный якорь одному счету, если после последнего
// якоря накопилось достаточно транзакций
func (s *AnchorSchedulerService) anchorAccount(accountID, tenantID uint) error {
	return s.store.RunAtomic(func(tx LedgerStore) error {
		account, err := tx.ReadAccount(accountID, tenantID)
		if err != nil {
			return err
		}

		var since time.Time
		anchor, err := tx.FindLatestAnchor(accountID, tenantID, nil)
		if err != nil {
			return err
		}
		if anchor != nil {
			since = DateOnly(anchor.AnchorDate)
		}

		count, err := tx.CountTransactionsAfter(accountID, tenantID, since)
		if err != nil {
			return err
		}
		if count < s.minTransactions {
			return nil
		}

		current, _, err := balanceAsOf(tx, account)
		if err != nil {
			return err
		}

		today := DateOnly(time.Now())
		systemAnchor := &models.BalanceAnchor{
			AccountID:   accountID,
			TenantID:    tenantID,
			Balance:     current,
			AnchorDate:  today,
			Description: "Системный якорь",
		}
		StampAnchor(systemAnchor, s.anchorKey)
		if err := tx.CreateAnchor(systemAnchor); err != nil {
			return err
		}

		// Кэш подтягивается к реконструированному значению: дрейф, накопленный
		// обходными путями записи, здесь же и устраняется
		if !account.Balance.Equal(current) {
			utils.LogWarning("кэш счета %d расходился с реконструкцией на %s", accountID, account.Balance.Sub(current).StringFixed(2))
		}
		if err := tx.UpdateAccountBalance(account, current, today); err != nil {
			return err
		}

		utils.GetMetrics().RecordSchedulerAnchor()
		utils.LogInfo("системный якорь для счета %d: %s на %s", accountID, current.StringFixed(2), today.Format("2006-01-02"))
		return nil
	})
}
