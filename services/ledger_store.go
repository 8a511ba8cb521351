package services

import (
	"time"

	"github.com/shopspring/decimal"

	"ledgerProject/models"
)

// LedgerStore описывает контракт хранилища леджера, который потребляют
// сервисы балансов. Реализуется пакетом database поверх gorm и фейковым
// хранилищем в тестах. Все операции чтения и записи обязаны фильтровать
// по паре (accountID, tenantID).
type LedgerStore interface {
	// ReadAccount возвращает счет; ErrAccountNotFound, если счет не
	// существует или принадлежит другому арендатору
	ReadAccount(accountID, tenantID uint) (*models.Account, error)

	// FindLatestAnchor возвращает последний якорь с anchor_date <= asOf
	// (или последний вообще при asOf == nil); nil без ошибки, если якорей нет
	FindLatestAnchor(accountID, tenantID uint, asOf *time.Time) (*models.BalanceAnchor, error)

	// FindTransactions возвращает транзакции счета за [from, to]
	// (границы включительно, nil — без ограничения), отсортированные по дате
	FindTransactions(accountID, tenantID uint, from, to *time.Time) ([]models.Transaction, error)

	// CountTransactionsAfter возвращает число транзакций с date > after
	CountTransactionsAfter(accountID, tenantID uint, after time.Time) (int64, error)

	ReadTransaction(id, tenantID uint) (*models.Transaction, error)
	CreateTransaction(txn *models.Transaction) error
	SaveTransaction(txn *models.Transaction) error
	DeleteTransaction(txn *models.Transaction) error

	CreateAccount(account *models.Account) error
	FindAccounts(tenantID uint) ([]models.Account, error)
	FindActiveAccounts() ([]models.Account, error)

	CreateAnchor(anchor *models.BalanceAnchor) error

	// UpdateAccountBalance обновляет кэшированный баланс со сверкой версии
	// строки; ErrConcurrentModification, если версия уже ушла вперед
	UpdateAccountBalance(account *models.Account, balance decimal.Decimal, balanceDate time.Time) error

	// RunAtomic выполняет fn в одной транзакции хранилища: либо видны все
	// записи fn, либо ни одна. Чтения внутри fn наблюдают единый снимок.
	RunAtomic(fn func(LedgerStore) error) error
}
