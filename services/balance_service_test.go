package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestGetBalanceHistoryAroundAnchor(t *testing.T) {
	store := newFakeStore()
	account := store.seedAccount(1, "1200.00")
	store.seedTransaction(account, "2024-03-08", "100.00", "INCOME")
	store.seedTransaction(account, "2024-03-09", "-50.00", "EXPENSE")
	store.seedAnchor(account, "2024-03-10", "1000.00")
	store.seedTransaction(account, "2024-03-12", "200.00", "INCOME")

	service := NewBalanceService(store, nil, nil)
	series, err := service.GetBalanceHistory(account.ID, 1, day("2024-03-01"), day("2024-03-31"))
	if err != nil {
		t.Fatal(err)
	}

	if len(series) != 3 {
		t.Fatalf("expected 3 points, got %d", len(series))
	}

	// Накопление через дни "до" обязано лечь ровно на баланс якоря
	expected := []struct {
		date    string
		balance string
	}{
		{"2024-03-08", "1050.00"},
		{"2024-03-09", "1000.00"},
		{"2024-03-12", "1200.00"},
	}
	for i, want := range expected {
		if !series[i].Date.Equal(day(want.date)) {
			t.Errorf("point %d: got date %v want %v", i, series[i].Date, day(want.date))
		}
		if !series[i].Balance.Equal(dec(want.balance)) {
			t.Errorf("point %d: got balance %s want %s", i, series[i].Balance, want.balance)
		}
		if series[i].Method != MethodAnchorBased {
			t.Errorf("point %d: got method %s want %s", i, series[i].Method, MethodAnchorBased)
		}
	}
}

func TestGetBalanceHistoryDirect(t *testing.T) {
	store := newFakeStore()
	account := store.seedAccount(1, "500.00")
	store.seedTransaction(account, "2024-03-01", "200.00", "INCOME")
	store.seedTransaction(account, "2024-03-02", "-100.00", "EXPENSE")

	service := NewBalanceService(store, nil, nil)
	series, err := service.GetBalanceHistory(account.ID, 1, day("2024-03-01"), day("2024-03-31"))
	if err != nil {
		t.Fatal(err)
	}

	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series))
	}
	// Без якоря серия строится от кэшированного баланса счета и кончается на нем
	if !series[0].Balance.Equal(dec("600.00")) {
		t.Errorf("got first balance %s want 600.00", series[0].Balance)
	}
	if !series[1].Balance.Equal(account.Balance) {
		t.Errorf("got last balance %s want %s", series[1].Balance, account.Balance)
	}
	for i := range series {
		if series[i].Method != MethodDirect {
			t.Errorf("point %d: got method %s want %s", i, series[i].Method, MethodDirect)
		}
	}
}

func TestGetBalanceHistoryEmptyLedger(t *testing.T) {
	store := newFakeStore()
	account := store.seedAccount(1, "500.00")

	service := NewBalanceService(store, nil, nil)
	series, err := service.GetBalanceHistory(account.ID, 1, day("2024-03-01"), day("2024-03-31"))
	if err != nil {
		t.Fatal(err)
	}
	if series == nil {
		t.Fatal("expected empty series, got nil")
	}
	if len(series) != 0 {
		t.Errorf("expected empty series, got %d points", len(series))
	}
}

func TestGetBalanceHistoryAnchorWithoutTransactions(t *testing.T) {
	store := newFakeStore()
	account := store.seedAccount(1, "1000.00")
	store.seedAnchor(account, "2024-03-10", "1000.00")

	service := NewBalanceService(store, nil, nil)
	series, err := service.GetBalanceHistory(account.ID, 1, day("2024-03-01"), day("2024-03-31"))
	if err != nil {
		t.Fatal(err)
	}

	// Серия состоит из единственной точки — самого якоря
	if len(series) != 1 {
		t.Fatalf("expected 1 point, got %d", len(series))
	}
	if !series[0].Date.Equal(day("2024-03-10")) {
		t.Errorf("got date %v want %v", series[0].Date, day("2024-03-10"))
	}
	if !series[0].Balance.Equal(dec("1000.00")) {
		t.Errorf("got balance %s want 1000.00", series[0].Balance)
	}
	if series[0].Transactions != 0 {
		t.Errorf("got %d transactions want 0", series[0].Transactions)
	}
}

func TestSameDayTransactionsCollapseIntoOnePoint(t *testing.T) {
	store := newFakeStore()
	account := store.seedAccount(1, "150.00")
	store.seedTransaction(account, "2024-03-05", "100.00", "INCOME")
	store.seedTransaction(account, "2024-03-05", "-30.00", "EXPENSE")
	store.seedTransaction(account, "2024-03-05", "80.00", "TRANSFER")

	service := NewBalanceService(store, nil, nil)
	series, err := service.GetBalanceHistory(account.ID, 1, day("2024-03-01"), day("2024-03-31"))
	if err != nil {
		t.Fatal(err)
	}

	if len(series) != 1 {
		t.Fatalf("expected 1 point, got %d", len(series))
	}
	if !series[0].NetAmount.Equal(dec("150.00")) {
		t.Errorf("got net amount %s want 150.00", series[0].NetAmount)
	}
	if series[0].Transactions != 3 {
		t.Errorf("got %d transactions want 3", series[0].Transactions)
	}
}

func TestGetBalanceHistoryWindowKeepsEarlierHistory(t *testing.T) {
	store := newFakeStore()
	account := store.seedAccount(1, "300.00")
	store.seedTransaction(account, "2024-01-10", "100.00", "INCOME")
	store.seedTransaction(account, "2024-02-10", "100.00", "INCOME")
	store.seedTransaction(account, "2024-03-10", "100.00", "INCOME")

	service := NewBalanceService(store, nil, nil)
	series, err := service.GetBalanceHistory(account.ID, 1, day("2024-03-01"), day("2024-03-31"))
	if err != nil {
		t.Fatal(err)
	}

	// Точки до начала окна отрезаются, но их вклад в балансы сохраняется
	if len(series) != 1 {
		t.Fatalf("expected 1 point, got %d", len(series))
	}
	if !series[0].Balance.Equal(dec("300.00")) {
		t.Errorf("got balance %s want 300.00", series[0].Balance)
	}
}

func TestGetBalanceHistoryInvalidRange(t *testing.T) {
	store := newFakeStore()
	account := store.seedAccount(1, "0.00")

	service := NewBalanceService(store, nil, nil)
	_, err := service.GetBalanceHistory(account.ID, 1, day("2024-03-31"), day("2024-03-01"))
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("got error %v want %v", err, ErrInvalidRange)
	}
}

func TestGetBalanceHistoryAccountNotFound(t *testing.T) {
	store := newFakeStore()
	account := store.seedAccount(1, "0.00")

	service := NewBalanceService(store, nil, nil)
	// Чужой арендатор не видит счет
	_, err := service.GetBalanceHistory(account.ID, 2, day("2024-03-01"), day("2024-03-31"))
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("got error %v want %v", err, ErrAccountNotFound)
	}
}

func TestGetRunningBalancesDescending(t *testing.T) {
	store := newFakeStore()
	account := store.seedAccount(1, "300.00")
	store.seedTransaction(account, "2024-03-01", "100.00", "INCOME")
	store.seedTransaction(account, "2024-03-02", "100.00", "INCOME")
	store.seedTransaction(account, "2024-03-03", "100.00", "INCOME")

	service := NewBalanceService(store, nil, nil)
	feed, err := service.GetRunningBalances(account.ID, 1, day("2024-03-01"), day("2024-03-31"))
	if err != nil {
		t.Fatal(err)
	}

	if len(feed) != 3 {
		t.Fatalf("expected 3 points, got %d", len(feed))
	}
	for i := 1; i < len(feed); i++ {
		if !feed[i].Date.Before(feed[i-1].Date) {
			t.Errorf("feed not descending at %d: %v >= %v", i, feed[i].Date, feed[i-1].Date)
		}
	}
	// Лента — та же серия, самая свежая точка впереди
	if !feed[0].Balance.Equal(dec("300.00")) {
		t.Errorf("got newest balance %s want 300.00", feed[0].Balance)
	}
}

func TestBalanceDeltasMatchNetAmounts(t *testing.T) {
	store := newFakeStore()
	account := store.seedAccount(1, "170.00")
	store.seedTransaction(account, "2024-03-01", "100.00", "INCOME")
	store.seedTransaction(account, "2024-03-03", "-25.50", "EXPENSE")
	store.seedTransaction(account, "2024-03-07", "95.50", "TRANSFER")
	store.seedAnchor(account, "2024-03-05", "74.50")

	service := NewBalanceService(store, nil, nil)
	series, err := service.GetBalanceHistory(account.ID, 1, day("2024-03-01"), day("2024-03-31"))
	if err != nil {
		t.Fatal(err)
	}

	// Разница соседних балансов равна дневному нетто
	for i := 1; i < len(series); i++ {
		delta := series[i].Balance.Sub(series[i-1].Balance)
		if !delta.Equal(series[i].NetAmount) {
			t.Errorf("point %d: balance delta %s != net amount %s", i, delta, series[i].NetAmount)
		}
	}
}

func TestAnchorDateBalanceEqualsAnchor(t *testing.T) {
	store := newFakeStore()
	account := store.seedAccount(1, "0.00")
	store.seedTransaction(account, "2024-03-08", "123.45", "INCOME")
	store.seedTransaction(account, "2024-03-10", "-23.45", "EXPENSE")
	store.seedAnchor(account, "2024-03-10", "100.00")

	service := NewBalanceService(store, nil, nil)
	series, err := service.GetBalanceHistory(account.ID, 1, day("2024-03-01"), day("2024-03-31"))
	if err != nil {
		t.Fatal(err)
	}

	// Баланс на дату якоря равен балансу якоря
	found := false
	for _, point := range series {
		if point.Date.Equal(day("2024-03-10")) {
			found = true
			if !point.Balance.Equal(dec("100.00")) {
				t.Errorf("got balance %s on anchor date want 100.00", point.Balance)
			}
		}
	}
	if !found {
		t.Fatal("no point on the anchor date")
	}
}

func TestPrecisionOverManySmallAmounts(t *testing.T) {
	store := newFakeStore()
	account := store.seedAccount(1, "0.00")
	store.seedAnchor(account, "2024-01-01", "0.00")
	for i := 0; i < 10000; i++ {
		store.seedTransaction(account, "2024-02-01", "0.01", "INCOME")
	}

	service := NewBalanceService(store, nil, nil)
	series, err := service.GetBalanceHistory(account.ID, 1, day("2024-01-01"), day("2024-12-31"))
	if err != nil {
		t.Fatal(err)
	}

	last := series[len(series)-1]
	// Десять тысяч копеечных транзакций складываются без дрейфа
	if !last.Balance.Equal(dec("100.00")) {
		t.Errorf("got balance %s want exactly 100.00", last.Balance)
	}
}

func TestTamperedAnchorStampDoesNotFailReconstruction(t *testing.T) {
	store := newFakeStore()
	account := store.seedAccount(1, "100.00")
	anchor := store.seedAnchor(account, "2024-03-10", "100.00")
	stored := store.anchors[anchor.ID]
	stored.Signature = "испорченная подпись"
	store.anchors[anchor.ID] = stored
	store.seedTransaction(account, "2024-03-12", "50.00", "INCOME")

	service := NewBalanceService(store, nil, []byte("ключ"))
	series, err := service.GetBalanceHistory(account.ID, 1, day("2024-03-01"), day("2024-03-31"))
	if err != nil {
		t.Fatal(err)
	}
	// Испорченный штамп — предупреждение, серия все равно возвращается
	if len(series) != 1 {
		t.Fatalf("expected 1 point, got %d", len(series))
	}
	if !series[0].Balance.Equal(dec("150.00")) {
		t.Errorf("got balance %s want 150.00", series[0].Balance)
	}
}

func TestSummarize(t *testing.T) {
	series := []BalancePoint{
		{Balance: dec("950.00"), NetAmount: dec("100.00"), Transactions: 2, Method: MethodAnchorBased},
		{Balance: dec("1000.00"), NetAmount: dec("50.00"), Transactions: 1, Method: MethodAnchorBased},
		{Balance: dec("1200.00"), NetAmount: dec("200.00"), Transactions: 3, Method: MethodDirect},
	}

	summary := Summarize(series)
	if !summary.StartingBalance.Equal(dec("950.00")) {
		t.Errorf("got starting balance %s want 950.00", summary.StartingBalance)
	}
	if !summary.EndingBalance.Equal(dec("1200.00")) {
		t.Errorf("got ending balance %s want 1200.00", summary.EndingBalance)
	}
	if !summary.NetChange.Equal(dec("250.00")) {
		t.Errorf("got net change %s want 250.00", summary.NetChange)
	}
	if summary.TransactionCount != 6 {
		t.Errorf("got %d transactions want 6", summary.TransactionCount)
	}
	if summary.CalculationMethods[MethodAnchorBased] != 2 || summary.CalculationMethods[MethodDirect] != 1 {
		t.Errorf("got methods %v want anchorBased:2 direct:1", summary.CalculationMethods)
	}
}

func TestSummarizeEmptySeries(t *testing.T) {
	summary := Summarize(nil)
	if !summary.StartingBalance.Equal(decimal.Zero) || !summary.EndingBalance.Equal(decimal.Zero) || !summary.NetChange.Equal(decimal.Zero) {
		t.Errorf("expected zero summary, got %+v", summary)
	}
	if summary.TransactionCount != 0 {
		t.Errorf("got %d transactions want 0", summary.TransactionCount)
	}
}

func TestGetBalanceSummaryOverWindow(t *testing.T) {
	store := newFakeStore()
	account := store.seedAccount(1, "250.00")
	store.seedTransaction(account, "2024-03-01", "100.00", "INCOME")
	store.seedTransaction(account, "2024-03-05", "200.00", "INCOME")
	store.seedTransaction(account, "2024-03-09", "-50.00", "EXPENSE")

	service := NewBalanceService(store, nil, nil)
	summary, err := service.GetBalanceSummary(account.ID, 1, day("2024-03-01"), day("2024-03-31"))
	if err != nil {
		t.Fatal(err)
	}

	if !summary.EndingBalance.Equal(dec("250.00")) {
		t.Errorf("got ending balance %s want 250.00", summary.EndingBalance)
	}
	if !summary.NetChange.Equal(summary.EndingBalance.Sub(summary.StartingBalance)) {
		t.Errorf("net change %s inconsistent with %s - %s", summary.NetChange, summary.EndingBalance, summary.StartingBalance)
	}
	if summary.TransactionCount != 3 {
		t.Errorf("got %d transactions want 3", summary.TransactionCount)
	}
}
