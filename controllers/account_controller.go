package controllers

import (
	"encoding/json"
	"net/http"

	"ledgerProject/middleware"
	"ledgerProject/services"
)

// AccountController обрабатывает запросы, связанные со счетами
type AccountController struct {
	accountService *services.AccountService
}

// NewAccountController создает новый экземпляр AccountController
func NewAccountController(accountService *services.AccountService) *AccountController {
	return &AccountController{accountService: accountService}
}

// CreateAccount обрабатывает запрос на создание счета
func (c *AccountController) CreateAccount(w http.ResponseWriter, r *http.Request) {
	tenantID, err := middleware.TenantFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var dto services.CreateAccountDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, err := c.accountService.Create(tenantID, dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(account)
}

// GetAccounts обрабатывает запрос на получение счетов арендатора
func (c *AccountController) GetAccounts(w http.ResponseWriter, r *http.Request) {
	tenantID, err := middleware.TenantFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	accounts, err := c.accountService.GetAllByTenant(tenantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(accounts)
}

// GetAccount обрабатывает запрос на получение одного счета
func (c *AccountController) GetAccount(w http.ResponseWriter, r *http.Request) {
	tenantID, err := middleware.TenantFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	accountID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	account, err := c.accountService.GetById(accountID, tenantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(account)
}
