package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ledgerProject/config"
	"ledgerProject/controllers"
	"ledgerProject/database"
	"ledgerProject/middleware"
	"ledgerProject/services"
)

func initAnchorScheduler(db *database.Database, cfg *config.Config) {
	interval := time.Duration(cfg.Ledger.AnchorIntervalHours) * time.Hour

	// Создаем планировщик системных якорей
	scheduler := services.NewAnchorSchedulerService(db, interval, cfg.Ledger.AnchorMinTransactions, []byte(cfg.Ledger.AnchorHMACKey))

	// Запускаем планировщик
	scheduler.Start()
	log.Println("Планировщик якорей запущен")
}

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем подключение к базе данных
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}

	// Инициализируем сервис email
	emailService := services.NewEmailService(cfg)

	// Запускаем планировщик системных якорей
	initAnchorScheduler(db, cfg)

	// Инициализируем сервисы реестра
	anchorKey := []byte(cfg.Ledger.AnchorHMACKey)
	balanceService := services.NewBalanceService(db, emailService, anchorKey)
	reconcileService := services.NewReconcileService(db, emailService, anchorKey)
	transactionService := services.NewTransactionService(db)
	accountService := services.NewAccountService(db, anchorKey)

	// Создаем роутер
	router := mux.NewRouter()

	// Инициализируем контроллеры
	authController := controllers.NewAuthController(db, cfg)
	accountController := controllers.NewAccountController(accountService)
	balanceController := controllers.NewBalanceController(balanceService, reconcileService)
	transactionController := controllers.NewTransactionController(transactionService)

	// Публичные маршруты для аутентификации
	router.HandleFunc("/api/auth/signUp", authController.SignUp).Methods("POST")
	router.HandleFunc("/api/auth/signIn", authController.SignIn).Methods("POST")

	// Защищенные маршруты
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware([]byte(authController.GetJWTKey())))
	protected.Use(middleware.LoggingMiddleware)
	protected.Use(middleware.RateLimit)
	protected.Use(middleware.Recovery)

	// Маршруты для работы со счетами
	protected.HandleFunc("/accounts", accountController.CreateAccount).Methods("POST")
	protected.HandleFunc("/accounts", accountController.GetAccounts).Methods("GET")
	protected.HandleFunc("/accounts/{id}", accountController.GetAccount).Methods("GET")

	// Маршруты реконструкции баланса и сверки
	protected.HandleFunc("/accounts/{id}/balance/history", balanceController.GetBalanceHistory).Methods("GET")
	protected.HandleFunc("/accounts/{id}/balance/feed", balanceController.GetBalanceFeed).Methods("GET")
	protected.HandleFunc("/accounts/{id}/balance/summary", balanceController.GetBalanceSummary).Methods("GET")
	protected.HandleFunc("/accounts/{id}/reconcile", balanceController.Reconcile).Methods("POST")

	// Маршруты для работы с транзакциями
	protected.HandleFunc("/accounts/{id}/transactions", transactionController.GetTransactions).Methods("GET")
	protected.HandleFunc("/transactions", transactionController.CreateTransaction).Methods("POST")
	protected.HandleFunc("/transactions/{id}", transactionController.UpdateTransaction).Methods("PUT")
	protected.HandleFunc("/transactions/{id}", transactionController.DeleteTransaction).Methods("DELETE")

	// Запускаем сервер
	port := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на порту %s", port)
	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
