package service

import (
	"errors"
	"testing"

	"github.com/efreitasn/roundexchange/internal/domain"
)

func TestGetBalance_Success(t *testing.T) {
	d := newTestDeps(t)
	d.addAccount(t, 1, 1_000, map[string]int64{"MSFT": 4, "APL": 2, "ZZZ": 0})
	d.place(t, 1, domain.OrderSideBuy, 50, 1)
	svc := NewAccountService(d.accounts, d.orders)

	resp, err := svc.GetBalance(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Cash != 1_000 || resp.OpenOrders != 1 {
		t.Errorf("cash=%d open=%d, want 1000/1", resp.Cash, resp.OpenOrders)
	}
	want := []HoldingBalance{{"APL", 2}, {"MSFT", 4}}
	if len(resp.Holdings) != len(want) {
		t.Fatalf("holdings = %+v, want %+v", resp.Holdings, want)
	}
	for i := range want {
		if resp.Holdings[i] != want[i] {
			t.Errorf("holding %d = %+v, want %+v", i, resp.Holdings[i], want[i])
		}
	}
}

func TestGetBalance_AccountNotFound(t *testing.T) {
	d := newTestDeps(t)
	_, err := NewAccountService(d.accounts, d.orders).GetBalance(9)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestBalances_OrderedByID(t *testing.T) {
	d := newTestDeps(t)
	d.addAccount(t, 3, 30, nil)
	d.addAccount(t, 1, 10, map[string]int64{"APL": 1})
	d.addAccount(t, 2, 20, nil)

	got, err := NewAccountService(d.accounts, d.orders).Balances()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d balances, want 3", len(got))
	}
	for i, b := range got {
		if b.AccountID != i+1 || b.Cash != int64(10*(i+1)) {
			t.Errorf("balance %d = %+v", i, b)
		}
	}
}

func TestStatusCounts(t *testing.T) {
	d := newTestDeps(t)
	d.addAccount(t, 1, 10_000, nil)
	d.addAccount(t, 2, 0, map[string]int64{"APL": 5})
	d.place(t, 1, domain.OrderSideBuy, 100, 5)
	d.place(t, 1, domain.OrderSideBuy, 90, 1)
	d.place(t, 2, domain.OrderSideSell, 100, 5)
	d.matcher.Settle(0)

	counts := NewAccountService(d.accounts, d.orders).StatusCounts()
	if counts[domain.OrderStatusFilled] != 2 || counts[domain.OrderStatusPending] != 1 || len(counts) != 2 {
		t.Errorf("counts = %v, want filled=2 pending=1", counts)
	}
}

func TestListOrders_NewestFirstWithStatusFilter(t *testing.T) {
	d := newTestDeps(t)
	d.addAccount(t, 1, 10_000, nil)
	d.addAccount(t, 2, 0, map[string]int64{"APL": 5})
	first := d.place(t, 1, domain.OrderSideBuy, 100, 5)
	second := d.place(t, 1, domain.OrderSideBuy, 90, 1)
	d.place(t, 2, domain.OrderSideSell, 100, 5)
	d.matcher.Settle(0)

	svc := NewAccountService(d.accounts, d.orders)
	orders, total, err := svc.ListOrders(1, nil, 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || orders[0].ID != second.ID || orders[1].ID != first.ID {
		t.Errorf("expected [%d %d], got total %d", second.ID, first.ID, total)
	}

	filled := domain.OrderStatusFilled
	orders, total, err = svc.ListOrders(1, &filled, 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || orders[0].ID != first.ID {
		t.Errorf("expected only order %d filled, got %d orders", first.ID, total)
	}
}

func TestListOrders_Pagination(t *testing.T) {
	d := newTestDeps(t)
	d.addAccount(t, 1, 10_000, nil)
	for i := 0; i < 5; i++ {
		d.place(t, 1, domain.OrderSideBuy, 10, 1)
	}
	svc := NewAccountService(d.accounts, d.orders)

	page1, total, _ := svc.ListOrders(1, nil, 1, 2)
	page3, _, _ := svc.ListOrders(1, nil, 3, 2)
	page4, _, _ := svc.ListOrders(1, nil, 4, 2)
	if total != 5 || len(page1) != 2 || len(page3) != 1 || len(page4) != 0 {
		t.Errorf("total=%d pages=%d/%d/%d", total, len(page1), len(page3), len(page4))
	}
	if page1[0].ID != 5 || page3[0].ID != 1 {
		t.Errorf("unexpected page contents: %d, %d", page1[0].ID, page3[0].ID)
	}
}

func TestListOrders_Validation(t *testing.T) {
	d := newTestDeps(t)
	d.addAccount(t, 1, 0, nil)
	svc := NewAccountService(d.accounts, d.orders)

	if _, _, err := svc.ListOrders(2, nil, 1, 10); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}

	bogus := domain.OrderStatus("bogus")
	cases := []struct {
		name        string
		status      *domain.OrderStatus
		page, limit int
	}{
		{"status", &bogus, 1, 10},
		{"page", nil, 0, 10},
		{"limit low", nil, 1, 0},
		{"limit high", nil, 1, 101},
	}
	for _, tc := range cases {
		_, _, err := svc.ListOrders(1, tc.status, tc.page, tc.limit)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}
}
