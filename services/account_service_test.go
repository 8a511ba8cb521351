package services

import (
	"testing"
	"time"
)

func TestCreateAccountWritesInitialAnchor(t *testing.T) {
	store := newFakeStore()
	key := []byte("ключ штампа")

	service := NewAccountService(store, key)
	account, err := service.Create(1, CreateAccountDTO{
		Name:           "Основной счет",
		Type:           "checking",
		InitialBalance: dec("2500.00"),
	})
	if err != nil {
		t.Fatal(err)
	}

	if account.ID == 0 {
		t.Fatal("expected persisted account")
	}
	if account.TenantID != 1 {
		t.Errorf("got tenant %d want 1", account.TenantID)
	}
	if !account.Balance.Equal(dec("2500.00")) {
		t.Errorf("got balance %s want 2500.00", account.Balance)
	}

	// Стартовый баланс закреплен якорем, а не висит только в кэше
	anchor, err := store.FindLatestAnchor(account.ID, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if anchor == nil {
		t.Fatal("expected initial anchor")
	}
	if !anchor.Balance.Equal(dec("2500.00")) {
		t.Errorf("got anchor balance %s want 2500.00", anchor.Balance)
	}
	if !VerifyAnchorStamp(anchor, key) {
		t.Error("initial anchor stamp does not verify")
	}
	if !anchor.AnchorDate.Equal(DateOnly(time.Now())) {
		t.Errorf("got anchor date %v want today", anchor.AnchorDate)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	store := newFakeStore()
	service := NewAccountService(store, nil)

	if _, err := service.Create(1, CreateAccountDTO{Name: "x", Type: "checking"}); err == nil {
		t.Error("expected validation error for short name")
	}
	if _, err := service.Create(1, CreateAccountDTO{Name: "Счет", Type: "checking", NetWorthCategory: "DEBT"}); err == nil {
		t.Error("expected validation error for unknown category")
	}
}

func TestGetAllByTenantScopesAccounts(t *testing.T) {
	store := newFakeStore()
	store.seedAccount(1, "100.00")
	store.seedAccount(1, "200.00")
	store.seedAccount(2, "300.00")

	service := NewAccountService(store, nil)
	accounts, err := service.GetAllByTenant(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 2 {
		t.Fatalf("got %d accounts want 2", len(accounts))
	}
	for _, account := range accounts {
		if account.TenantID != 1 {
			t.Errorf("foreign account %d in listing", account.ID)
		}
	}
}
