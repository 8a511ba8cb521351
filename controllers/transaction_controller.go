package controllers

import (
	"encoding/json"
	"net/http"

	"ledgerProject/middleware"
	"ledgerProject/services"
)

// TransactionController обрабатывает запросы, связанные с транзакциями
type TransactionController struct {
	transactionService *services.TransactionService
}

// NewTransactionController создает новый экземпляр TransactionController
func NewTransactionController(transactionService *services.TransactionService) *TransactionController {
	return &TransactionController{transactionService: transactionService}
}

// CreateTransaction обрабатывает запрос на создание транзакции
func (c *TransactionController) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	tenantID, err := middleware.TenantFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var dto services.CreateTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	txn, err := c.transactionService.Create(tenantID, dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(txn)
}

// UpdateTransaction обрабатывает запрос на изменение транзакции
func (c *TransactionController) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	tenantID, err := middleware.TenantFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var dto services.UpdateTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	txn, err := c.transactionService.Update(tenantID, id, dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(txn)
}

// DeleteTransaction обрабатывает запрос на удаление транзакции
func (c *TransactionController) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	tenantID, err := middleware.TenantFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := c.transactionService.Delete(tenantID, id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetTransactions обрабатывает запрос на получение транзакций счета
func (c *TransactionController) GetTransactions(w http.ResponseWriter, r *http.Request) {
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

	start, end, err := dateRange(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	txns, err := c.transactionService.List(accountID, tenantID, &start, &end)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(txns)
}
