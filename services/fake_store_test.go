package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"ledgerProject/models"
)

// fakeStore реализация LedgerStore в памяти для тестов сервисов.
// RunAtomic снимает копию состояния и откатывается к ней при ошибке,
// повторяя транзакционную семантику настоящего хранилища.
type fakeStore struct {
	accounts     map[uint]models.Account
	transactions map[uint]models.Transaction
	anchors      map[uint]models.BalanceAnchor
	nextID       uint

	// Инъекция ошибок для проверки отката
	failCreateTransaction error
	failCreateAnchor      error
	failUpdateBalance     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:     make(map[uint]models.Account),
		transactions: make(map[uint]models.Transaction),
		anchors:      make(map[uint]models.BalanceAnchor),
	}
}

func (f *fakeStore) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) ReadAccount(accountID, tenantID uint) (*models.Account, error) {
	account, ok := f.accounts[accountID]
	if !ok || account.TenantID != tenantID {
		return nil, ErrAccountNotFound
	}
	copied := account
	return &copied, nil
}

func (f *fakeStore) FindLatestAnchor(accountID, tenantID uint, asOf *time.Time) (*models.BalanceAnchor, error) {
	var latest *models.BalanceAnchor
	for id := range f.anchors {
		anchor := f.anchors[id]
		if anchor.AccountID != accountID || anchor.TenantID != tenantID {
			continue
		}
		if asOf != nil && DateOnly(anchor.AnchorDate).After(DateOnly(*asOf)) {
			continue
		}
		if latest == nil ||
			anchor.AnchorDate.After(latest.AnchorDate) ||
			(anchor.AnchorDate.Equal(latest.AnchorDate) && anchor.ID > latest.ID) {
			copied := anchor
			latest = &copied
		}
	}
	return latest, nil
}

func (f *fakeStore) FindTransactions(accountID, tenantID uint, from, to *time.Time) ([]models.Transaction, error) {
	var txns []models.Transaction
	for id := range f.transactions {
		txn := f.transactions[id]
		if txn.AccountID != accountID || txn.TenantID != tenantID {
			continue
		}
		if from != nil && txn.Date.Before(*from) {
			continue
		}
		if to != nil && txn.Date.After(*to) {
			continue
		}
		txns = append(txns, txn)
	}
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.Before(txns[j].Date)
		}
		return txns[i].ID < txns[j].ID
	})
	return txns, nil
}

func (f *fakeStore) CountTransactionsAfter(accountID, tenantID uint, after time.Time) (int64, error) {
	var count int64
	for _, txn := range f.transactions {
		if txn.AccountID == accountID && txn.TenantID == tenantID && txn.Date.After(after) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) ReadTransaction(id, tenantID uint) (*models.Transaction, error) {
	txn, ok := f.transactions[id]
	if !ok || txn.TenantID != tenantID {
		return nil, ErrTransactionNotFound
	}
	copied := txn
	return &copied, nil
}

func (f *fakeStore) CreateTransaction(txn *models.Transaction) error {
	if f.failCreateTransaction != nil {
		return f.failCreateTransaction
	}
	txn.ID = f.id()
	f.transactions[txn.ID] = *txn
	return nil
}

func (f *fakeStore) SaveTransaction(txn *models.Transaction) error {
	if _, ok := f.transactions[txn.ID]; !ok {
		return ErrTransactionNotFound
	}
	f.transactions[txn.ID] = *txn
	return nil
}

func (f *fakeStore) DeleteTransaction(txn *models.Transaction) error {
	delete(f.transactions, txn.ID)
	return nil
}

func (f *fakeStore) CreateAccount(account *models.Account) error {
	account.ID = f.id()
	f.accounts[account.ID] = *account
	return nil
}

func (f *fakeStore) FindAccounts(tenantID uint) ([]models.Account, error) {
	var accounts []models.Account
	for id := range f.accounts {
		if f.accounts[id].TenantID == tenantID {
			accounts = append(accounts, f.accounts[id])
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (f *fakeStore) FindActiveAccounts() ([]models.Account, error) {
	var accounts []models.Account
	for id := range f.accounts {
		if f.accounts[id].IsActive {
			accounts = append(accounts, f.accounts[id])
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (f *fakeStore) CreateAnchor(anchor *models.BalanceAnchor) error {
	if f.failCreateAnchor != nil {
		return f.failCreateAnchor
	}
	anchor.ID = f.id()
	f.anchors[anchor.ID] = *anchor
	return nil
}

func (f *fakeStore) UpdateAccountBalance(account *models.Account, balance decimal.Decimal, balanceDate time.Time) error {
	if f.failUpdateBalance != nil {
		return f.failUpdateBalance
	}
	stored, ok := f.accounts[account.ID]
	if !ok || stored.Version != account.Version {
		return ErrConcurrentModification
	}
	stored.Balance = balance
	stored.BalanceDate = balanceDate
	stored.Version++
	f.accounts[account.ID] = stored

	account.Balance = balance
	account.BalanceDate = balanceDate
	account.Version++
	return nil
}

// RunAtomic выполняет fn над тем же состоянием и откатывает все изменения
// fn при ошибке
func (f *fakeStore) RunAtomic(fn func(LedgerStore) error) error {
	accounts := make(map[uint]models.Account, len(f.accounts))
	for id, account := range f.accounts {
		accounts[id] = account
	}
	transactions := make(map[uint]models.Transaction, len(f.transactions))
	for id, txn := range f.transactions {
		transactions[id] = txn
	}
	anchors := make(map[uint]models.BalanceAnchor, len(f.anchors))
	for id, anchor := range f.anchors {
		anchors[id] = anchor
	}
	nextID := f.nextID

	if err := fn(f); err != nil {
		f.accounts = accounts
		f.transactions = transactions
		f.anchors = anchors
		f.nextID = nextID
		return err
	}
	return nil
}

// seedAccount добавляет счет с кэшированным балансом
func (f *fakeStore) seedAccount(tenantID uint, balance string) *models.Account {
	account := &models.Account{
		TenantID:         tenantID,
		Name:             "Тестовый счет",
		Type:             "checking",
		NetWorthCategory: models.NetWorthAsset,
		Balance:          dec(balance),
		BalanceDate:      day("2024-01-01"),
		IsActive:         true,
	}
	f.CreateAccount(account)
	return account
}

// seedTransaction добавляет транзакцию с подписанной суммой
func (f *fakeStore) seedTransaction(account *models.Account, date, amount, txType string) *models.Transaction {
	txn := &models.Transaction{
		AccountID: account.ID,
		TenantID:  account.TenantID,
		Amount:    dec(amount),
		Type:      txType,
		Date:      day(date),
	}
	f.CreateTransaction(txn)
	return txn
}

// seedAnchor добавляет якорь без подписи
func (f *fakeStore) seedAnchor(account *models.Account, date, balance string) *models.BalanceAnchor {
	anchor := &models.BalanceAnchor{
		AccountID:  account.ID,
		TenantID:   account.TenantID,
		Balance:    dec(balance),
		AnchorDate: day(date),
	}
	f.CreateAnchor(anchor)
	return anchor
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}
