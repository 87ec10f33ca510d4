package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spmvsistema-lang/Kroz-ADM-sub000/internal/purchasing/entity"
)

func TestBuildBoletosSplitsTotalEqually(t *testing.T) {
	svc := &OrderService{}
	order := &entity.PurchaseOrder{ID: "ord-split-001", Total: 100}
	req := &SubmitDocumentsRequest{
		Installments: []BoletoInput{
			{DueDate: "2026-09-10"},
			{DueDate: "2026-10-10", Barcode: "23790000010010"},
			{DueDate: "2026-11-10"},
		},
	}

	boletos, err := svc.buildBoletos(context.Background(), "tenant-001", order, req)
	if err != nil {
		t.Fatalf("buildBoletos failed: %v", err)
	}
	if len(boletos) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(boletos))
	}

	// 每期金额恰好为总额/期数，不做尾差调整
	want := 100.0 / 3.0
	for i, b := range boletos {
		if b.Amount != want {
			t.Errorf("installment %d: expected amount %v, got %v", i+1, want, b.Amount)
		}
		if b.Seq != i+1 {
			t.Errorf("expected seq %d, got %d", i+1, b.Seq)
		}
		if b.OrderID != order.ID {
			t.Errorf("expected order id %s, got %s", order.ID, b.OrderID)
		}
	}

	due, _ := time.Parse("2006-01-02", "2026-10-10")
	if !boletos[1].DueDate.Equal(due) {
		t.Errorf("expected due date %v, got %v", due, boletos[1].DueDate)
	}
	if boletos[1].Barcode != "23790000010010" {
		t.Errorf("unexpected barcode: %s", boletos[1].Barcode)
	}
}

func TestBuildBoletosRejectsInvalidDueDate(t *testing.T) {
	svc := &OrderService{}
	order := &entity.PurchaseOrder{ID: "ord-split-002", Total: 300}
	req := &SubmitDocumentsRequest{
		Installments: []BoletoInput{{DueDate: "10/09/2026"}},
	}

	_, err := svc.buildBoletos(context.Background(), "tenant-001", order, req)
	if !errors.Is(err, entity.ErrGuardFailed) {
		t.Fatalf("expected guard failure for invalid due date, got %v", err)
	}
}
