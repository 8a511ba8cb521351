package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"ledgerProject/models"
	"ledgerProject/utils"
)

// CalculationMethod показывает, какой ветвью реконструкции получена точка серии
type CalculationMethod string

const (
	// MethodDirect полный перерасчет от кэшированного баланса счета
	MethodDirect CalculationMethod = "direct"
	// MethodAnchorBased реконструкция вокруг якоря
	MethodAnchorBased CalculationMethod = "anchorBased"
)

// BalancePoint представляет баланс счета на конец календарного дня.
// Транзакции одного дня суммируются в одну точку; порядок внутри дня
// на результат не влияет.
type BalancePoint struct {
	Date         time.Time         `json:"date"`
	Balance      decimal.Decimal   `json:"balance"`
	NetAmount    decimal.Decimal   `json:"net_amount"`
	Transactions int               `json:"transaction_count"`
	Method       CalculationMethod `json:"method"`
}

// BalanceSummary представляет сводку по реконструированной серии
type BalanceSummary struct {
	StartingBalance    decimal.Decimal           `json:"starting_balance"`
	EndingBalance      decimal.Decimal           `json:"ending_balance"`
	NetChange          decimal.Decimal           `json:"net_change"`
	TransactionCount   int                       `json:"transaction_count"`
	CalculationMethods map[CalculationMethod]int `json:"calculation_methods"`
}

// BalanceService восстанавливает историю баланса счета по леджеру и якорям
type BalanceService struct {
	store     LedgerStore
	email     *EmailService
	anchorKey []byte
}

// NewBalanceService создает новый экземпляр BalanceService
func NewBalanceService(store LedgerStore, email *EmailService, anchorKey []byte) *BalanceService {
	return &BalanceService{
		store:     store,
		email:     email,
		anchorKey: anchorKey,
	}
}

// DateOnly усекает время до календарной даты в UTC
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// dayGroup агрегат транзакций одного календарного дня
type dayGroup struct {
	date  time.Time
	net   decimal.Decimal
	count int
}

// groupByDay сворачивает транзакции в дневные агрегаты по возрастанию даты
func groupByDay(txns []models.Transaction) []dayGroup {
	byDay := make(map[time.Time]*dayGroup)
	for _, txn := range txns {
		day := DateOnly(txn.Date)
		group, ok := byDay[day]
		if !ok {
			group = &dayGroup{date: day, net: decimal.Zero}
			byDay[day] = group
		}
		group.net = group.net.Add(Contribution(txn.Amount, TransactionType(txn.Type)))
		group.count++
	}

	days := make([]dayGroup, 0, len(byDay))
	for _, group := range byDay {
		days = append(days, *group)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].date.Before(days[j].date)
	})
	return days
}

// GetBalanceHistory возвращает историю баланса за [start, end] по возрастанию
// даты. Балансы внутри диапазона учитывают и транзакции до start: серия
// строится по всей истории до end и затем обрезается до запрошенного окна.
func (s *BalanceService) GetBalanceHistory(accountID, tenantID uint, start, end time.Time) ([]BalancePoint, error) {
	start = DateOnly(start)
	end = DateOnly(end)
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	var series []BalancePoint

	// Якорь и транзакции читаются внутри одной транзакции хранилища,
	// чтобы оба чтения видели единый снимок
	err := s.store.RunAtomic(func(tx LedgerStore) error {
		account, err := tx.ReadAccount(accountID, tenantID)
		if err != nil {
			return err
		}

		anchor, err := tx.FindLatestAnchor(accountID, tenantID, &end)
		if err != nil {
			return err
		}

		txns, err := tx.FindTransactions(accountID, tenantID, nil, &end)
		if err != nil {
			return err
		}

		series = s.reconstruct(account, anchor, txns)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Обрезаем серию до запрошенного окна
	filtered := make([]BalancePoint, 0, len(series))
	for _, point := range series {
		if !point.Date.Before(start) {
			filtered = append(filtered, point)
		}
	}

	if len(filtered) > 0 {
		utils.GetMetrics().RecordReconstruction(string(filtered[0].Method))
	}
	return filtered, nil
}

// GetRunningBalances возвращает ту же серию в убывающем порядке дат —
// представление для ленты операций
func (s *BalanceService) GetRunningBalances(accountID, tenantID uint, start, end time.Time) ([]BalancePoint, error) {
	series, err := s.GetBalanceHistory(accountID, tenantID, start, end)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(series)-1; i < j; i, j = i+1, j-1 {
		series[i], series[j] = series[j], series[i]
	}
	return series, nil
}

// GetBalanceSummary возвращает сводку по истории баланса за [start, end]
func (s *BalanceService) GetBalanceSummary(accountID, tenantID uint, start, end time.Time) (*BalanceSummary, error) {
	series, err := s.GetBalanceHistory(accountID, tenantID, start, end)
	if err != nil {
		return nil, err
	}
	summary := Summarize(series)
	return &summary, nil
}

// Summarize сводит реконструированную серию: первый и последний баланс,
// чистое изменение, число транзакций и счетчики методов расчета.
// Контракт допускает смешанные серии, хотя на практике метод один на вызов.
func Summarize(series []BalancePoint) BalanceSummary {
	summary := BalanceSummary{
		StartingBalance:    decimal.Zero,
		EndingBalance:      decimal.Zero,
		NetChange:          decimal.Zero,
		CalculationMethods: make(map[CalculationMethod]int),
	}
	if len(series) == 0 {
		return summary
	}

	summary.StartingBalance = series[0].Balance
	summary.EndingBalance = series[len(series)-1].Balance
	summary.NetChange = summary.EndingBalance.Sub(summary.StartingBalance)
	for _, point := range series {
		summary.TransactionCount += point.Transactions
		summary.CalculationMethods[point.Method]++
	}
	return summary
}

// reconstruct строит серию дневных балансов по всем переданным транзакциям.
// При наличии якоря дни делятся на "до" и "после": для дней до якоря
// стартовый баланс выводится так, чтобы накопление легло ровно на якорь,
// дни после накапливаются вперед от баланса якоря. Без якоря опорой служит
// кэшированный баланс счета.
func (s *BalanceService) reconstruct(account *models.Account, anchor *models.BalanceAnchor, txns []models.Transaction) []BalancePoint {
	days := groupByDay(txns)

	if anchor != nil {
		s.verifyAnchor(account, anchor)
		return s.reconstructAroundAnchor(account, anchor, days)
	}
	return s.reconstructDirect(account, days)
}

func (s *BalanceService) reconstructAroundAnchor(account *models.Account, anchor *models.BalanceAnchor, days []dayGroup) []BalancePoint {
	anchorDate := DateOnly(anchor.AnchorDate)

	// Счет с якорем и без единой транзакции: серия — сам якорь
	if len(days) == 0 {
		return []BalancePoint{{
			Date:      anchorDate,
			Balance:   anchor.Balance,
			NetAmount: decimal.Zero,
			Method:    MethodAnchorBased,
		}}
	}

	var before, after []dayGroup
	for _, day := range days {
		if day.date.After(anchorDate) {
			after = append(after, day)
		} else {
			before = append(before, day)
		}
	}

	points := make([]BalancePoint, 0, len(days))

	// Стартовый баланс выводится из якоря: накопление через все дни "до"
	// обязано закончиться ровно на балансе якоря
	sumBefore := decimal.Zero
	for _, day := range before {
		sumBefore = sumBefore.Add(day.net)
	}
	running := anchor.Balance.Sub(sumBefore)
	for _, day := range before {
		running = running.Add(day.net)
		points = append(points, BalancePoint{
			Date:         day.date,
			Balance:      running,
			NetAmount:    day.net,
			Transactions: day.count,
			Method:       MethodAnchorBased,
		})
	}
	if len(before) > 0 && !running.Equal(anchor.Balance) {
		s.reportDiscrepancy(account, running.Sub(anchor.Balance))
	}

	running = anchor.Balance
	for _, day := range after {
		running = running.Add(day.net)
		points = append(points, BalancePoint{
			Date:         day.date,
			Balance:      running,
			NetAmount:    day.net,
			Transactions: day.count,
			Method:       MethodAnchorBased,
		})
	}
	return points
}

func (s *BalanceService) reconstructDirect(account *models.Account, days []dayGroup) []BalancePoint {
	if len(days) == 0 {
		return []BalancePoint{}
	}

	total := decimal.Zero
	for _, day := range days {
		total = total.Add(day.net)
	}

	// Полный перерасчет: опорой служит кэшированный баланс счета,
	// стартовый баланс выводится вычитанием всех вкладов
	running := account.Balance.Sub(total)
	points := make([]BalancePoint, 0, len(days))
	for _, day := range days {
		running = running.Add(day.net)
		points = append(points, BalancePoint{
			Date:         day.date,
			Balance:      running,
			NetAmount:    day.net,
			Transactions: day.count,
			Method:       MethodDirect,
		})
	}
	if !running.Equal(account.Balance) {
		s.reportDiscrepancy(account, running.Sub(account.Balance))
	}
	return points
}

// balanceAsOf возвращает баланс счета на текущий момент внутри уже открытой
// транзакции хранилища: баланс последнего якоря плюс вклады транзакций после
// него, либо кэшированный баланс счета, если якорей нет
func balanceAsOf(tx LedgerStore, account *models.Account) (decimal.Decimal, CalculationMethod, error) {
	anchor, err := tx.FindLatestAnchor(account.ID, account.TenantID, nil)
	if err != nil {
		return decimal.Zero, "", err
	}
	if anchor == nil {
		return account.Balance, MethodDirect, nil
	}

	from := DateOnly(anchor.AnchorDate).AddDate(0, 0, 1)
	txns, err := tx.FindTransactions(account.ID, account.TenantID, &from, nil)
	if err != nil {
		return decimal.Zero, "", err
	}

	balance := anchor.Balance
	for _, txn := range txns {
		balance = balance.Add(Contribution(txn.Amount, TransactionType(txn.Type)))
	}
	return balance, MethodAnchorBased, nil
}

// verifyAnchor проверяет HMAC-штамп якоря; расхождение не фатально и уходит
// в канал предупреждений о консистентности
func (s *BalanceService) verifyAnchor(account *models.Account, anchor *models.BalanceAnchor) {
	if VerifyAnchorStamp(anchor, s.anchorKey) {
		return
	}
	utils.LogWarning("штамп якоря %d для счета %d не прошел проверку", anchor.ID, account.ID)
	utils.GetMetrics().RecordConsistencyWarning()
}

// reportDiscrepancy фиксирует расхождение реконструкции: предупреждение в лог,
// метрика и письмо оператору. Реконструкция при этом возвращает серию —
// деградированный баланс полезнее отказа.
func (s *BalanceService) reportDiscrepancy(account *models.Account, discrepancy decimal.Decimal) {
	utils.LogWarning("расхождение реконструкции для счета %d: %s", account.ID, discrepancy.StringFixed(2))
	utils.GetMetrics().RecordConsistencyWarning()

	if s.email != nil {
		if err := s.email.SendConsistencyAlert(account.ID, discrepancy); err != nil {
			utils.LogError("не удалось отправить предупреждение о расхождении: %v", err)
		}
	}
}
