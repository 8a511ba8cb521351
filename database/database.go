package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ledgerProject/config"
	"ledgerProject/models"
	"ledgerProject/services"
)

// Database реализует services.LedgerStore поверх gorm/postgres
type Database struct {
	DB *gorm.DB
}

// NewDatabase создает новое подключение к базе данных
func NewDatabase(cfg *config.Config) (*Database, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	return &Database{DB: db}, nil
}

// GetDB возвращает экземпляр GORM
func (d *Database) GetDB() *gorm.DB {
	return d.DB
}

// Close закрывает подключение к базе данных
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Connect устанавливает соединение с базой данных и выполняет миграции
func Connect(cfg *config.Config) (*gorm.DB, error) {
	// Формируем строку подключения
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.DBName,
	)

	// Настраиваем логгер
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	// Устанавливаем соединение
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %v", err)
	}

	// Настраиваем пул соединений
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пула соединений: %v", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Выполняем SQL миграции
	if err := runMigrations(cfg); err != nil {
		return nil, fmt.Errorf("ошибка выполнения SQL миграций: %v", err)
	}

	// Выполняем автоматическую миграцию моделей
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("ошибка автоматической миграции моделей: %v", err)
	}

	return db, nil
}

// runMigrations выполняет SQL миграции
func runMigrations(cfg *config.Config) error {
	// Формируем URL для миграций
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.DBName,
	)

	// Создаем экземпляр миграции
	m, err := migrate.New(
		"file://migrations",
		dsn,
	)
	if err != nil {
		return fmt.Errorf("ошибка создания миграции: %v", err)
	}

	// Выполняем миграции
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("ошибка выполнения миграций: %v", err)
	}

	return nil
}

// autoMigrate выполняет автоматическую миграцию моделей
func autoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Transaction{},
		&models.BalanceAnchor{},
	)
	if err != nil {
		return fmt.Errorf("ошибка автоматической миграции: %v", err)
	}

	return nil
}

// ReadAccount возвращает счет арендатора
func (d *Database) ReadAccount(accountID, tenantID uint) (*models.Account, error) {
	var account models.Account
	err := d.DB.Where("id = ? AND tenant_id = ?", accountID, tenantID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindLatestAnchor возвращает последний якорь не позже asOf; nil, если якорей нет
func (d *Database) FindLatestAnchor(accountID, tenantID uint, asOf *time.Time) (*models.BalanceAnchor, error) {
	query := d.DB.Where("account_id = ? AND tenant_id = ?", accountID, tenantID)
	if asOf != nil {
		query = query.Where("anchor_date <= ?", *asOf)
	}

	var anchor models.BalanceAnchor
	err := query.Order("anchor_date DESC, id DESC").First(&anchor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &anchor, nil
}

// FindTransactions возвращает транзакции счета за [from, to] по возрастанию даты
func (d *Database) FindTransactions(accountID, tenantID uint, from, to *time.Time) ([]models.Transaction, error) {
	query := d.DB.Where("account_id = ? AND tenant_id = ?", accountID, tenantID)
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date <= ?", *to)
	}

	var txns []models.Transaction
	if err := query.Order("date ASC, id ASC").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// CountTransactionsAfter возвращает число транзакций с date > after
func (d *Database) CountTransactionsAfter(accountID, tenantID uint, after time.Time) (int64, error) {
	var count int64
	err := d.DB.Model(&models.Transaction{}).
		Where("account_id = ? AND tenant_id = ? AND date > ?", accountID, tenantID, after).
		Count(&count).Error
	return count, err
}

// ReadTransaction возвращает транзакцию арендатора
func (d *Database) ReadTransaction(id, tenantID uint) (*models.Transaction, error) {
	var txn models.Transaction
	err := d.DB.Where("id = ? AND tenant_id = ?", id, tenantID).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// CreateTransaction сохраняет транзакцию
func (d *Database) CreateTransaction(txn *models.Transaction) error {
	return d.DB.Create(txn).Error
}

// SaveTransaction обновляет транзакцию
func (d *Database) SaveTransaction(txn *models.Transaction) error {
	return d.DB.Save(txn).Error
}

// DeleteTransaction удаляет транзакцию
func (d *Database) DeleteTransaction(txn *models.Transaction) error {
	return d.DB.Where("id = ? AND tenant_id = ?", txn.ID, txn.TenantID).
		Delete(&models.Transaction{}).Error
}

// CreateAccount сохраняет счет
func (d *Database) CreateAccount(account *models.Account) error {
	return d.DB.Create(account).Error
}

// FindAccounts возвращает все счета арендатора
func (d *Database) FindAccounts(tenantID uint) ([]models.Account, error) {
	var accounts []models.Account
	if err := d.DB.Where("tenant_id = ?", tenantID).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// FindActiveAccounts возвращает активные счета всех арендаторов (для планировщика)
func (d *Database) FindActiveAccounts() ([]models.Account, error) {
	var accounts []models.Account
	if err := d.DB.Where("is_active = ?", true).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// CreateAnchor сохраняет якорь баланса
func (d *Database) CreateAnchor(anchor *models.BalanceAnchor) error {
	return d.DB.Create(anchor).Error
}

// UpdateAccountBalance обновляет кэшированный баланс со сверкой версии строки.
// Нулевое число затронутых строк означает, что параллельная операция уже
// продвинула версию — возвращается ErrConcurrentModification.
func (d *Database) UpdateAccountBalance(account *models.Account, balance decimal.Decimal, balanceDate time.Time) error {
	result := d.DB.Model(&models.Account{}).
		Where("id = ? AND tenant_id = ? AND version = ?", account.ID, account.TenantID, account.Version).
		Updates(map[string]interface{}{
			"balance":      balance,
			"balance_date": balanceDate,
			"version":      account.Version + 1,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return services.ErrConcurrentModification
	}

	account.Balance = balance
	account.BalanceDate = balanceDate
	account.Version++
	return nil
}

// RunAtomic выполняет fn в одной сериализуемой транзакции: чтения внутри fn
// видят единый снимок, записи либо фиксируются все, либо ни одна
func (d *Database) RunAtomic(fn func(services.LedgerStore) error) error {
	err := d.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&Database{DB: tx})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	return translateConflict(err)
}

// translateConflict переводит отказ сериализации/дедлок постгреса в
// ErrConcurrentModification, чтобы вызывающая сторона могла повторить
func translateConflict(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
		return services.ErrConcurrentModification
	}
	return err
}
