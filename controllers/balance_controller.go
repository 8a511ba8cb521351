package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"ledgerProject/middleware"
	"ledgerProject/services"
)

// BalanceController обрабатывает запросы истории баланса и сверки
type BalanceController struct {
	balanceService   *services.BalanceService
	reconcileService *services.ReconcileService
}

// NewBalanceController создает новый экземпляр BalanceController
func NewBalanceController(balanceService *services.BalanceService, reconcileService *services.ReconcileService) *BalanceController {
	return &BalanceController{
		balanceService:   balanceService,
		reconcileService: reconcileService,
	}
}

// ReconcileRequest представляет запрос на сверку счета
type ReconcileRequest struct {
	NewBalance    decimal.Decimal `json:"new_balance"`
	ReconcileDate string          `json:"reconcile_date"`
}

// GetBalanceHistory обрабатывает запрос истории баланса по возрастанию дат
func (c *BalanceController) GetBalanceHistory(w http.ResponseWriter, r *http.Request) {
	c.serveSeries(w, r, c.balanceService.GetBalanceHistory)
}

// GetBalanceFeed обрабатывает запрос ленты балансов по убыванию дат
func (c *BalanceController) GetBalanceFeed(w http.ResponseWriter, r *http.Request) {
	c.serveSeries(w, r, c.balanceService.GetRunningBalances)
}

func (c *BalanceController) serveSeries(w http.ResponseWriter, r *http.Request, fetch func(uint, uint, time.Time, time.Time) ([]services.BalancePoint, error)) {
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

	series, err := fetch(accountID, tenantID, start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(series)
}

// GetBalanceSummary обрабатывает запрос сводки баланса
func (c *BalanceController) GetBalanceSummary(w http.ResponseWriter, r *http.Request) {
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

	summary, err := c.balanceService.GetBalanceSummary(accountID, tenantID, start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(summary)
}

// Reconcile обрабатывает запрос на сверку счета с балансом выписки
func (c *BalanceController) Reconcile(w http.ResponseWriter, r *http.Request) {
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

	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	reconcileDate := services.DateOnly(time.Now())
	if req.ReconcileDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ReconcileDate)
		if err != nil {
			http.Error(w, "некорректная дата сверки", http.StatusBadRequest)
			return
		}
		reconcileDate = services.DateOnly(parsed)
	}

	result, err := c.reconcileService.Reconcile(accountID, tenantID, req.NewBalance, reconcileDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}
