package entity

import (
	"errors"
	"testing"
	"time"
)

func newTestOrder() *PurchaseOrder {
	delivery := time.Now().Add(-24 * time.Hour)
	return &PurchaseOrder{
		ID:            "po-test-001",
		Code:          "PC-2026-0001",
		TenantID:      "tenant-test-001",
		PaymentMethod: PaymentMethodBoleto,
		Status:        OrderStatusAwaitingDocuments,
		DeliveryDate:  &delivery,
		Total:         1500,
	}
}

func TestSubmitDocumentsTransition(t *testing.T) {
	o := newTestOrder()
	now := time.Now()

	if err := o.SubmitDocuments("supplier-user", now, true); err != nil {
		t.Fatalf("SubmitDocuments failed: %v", err)
	}
	if o.Status != OrderStatusAwaitingApproval {
		t.Fatalf("expected awaiting_approval, got %s", o.Status)
	}
	if !o.Actions.NF.Sent.Done || !o.Actions.Boleto.Sent.Done {
		t.Fatal("sent flags not set after submit")
	}
	if o.Actions.NF.Sent.Actor != "supplier-user" {
		t.Fatalf("unexpected actor: %s", o.Actions.NF.Sent.Actor)
	}

	// 已完成订单不能再提交单据
	o.Status = OrderStatusCompleted
	if err := o.SubmitDocuments("supplier-user", now, true); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestConfirmDeliveryIdempotent(t *testing.T) {
	o := newTestOrder()
	now := time.Now()

	if err := o.ConfirmDelivery("buyer", now); err != nil {
		t.Fatalf("ConfirmDelivery failed: %v", err)
	}
	if o.Status != OrderStatusAwaitingApproval {
		t.Fatalf("expected awaiting_approval, got %s", o.Status)
	}
	firstTS := o.Actions.Entrega.Timestamp

	// 重复确认不报错且不覆盖原标记
	if err := o.ConfirmDelivery("someone-else", now.Add(time.Hour)); err != nil {
		t.Fatalf("second ConfirmDelivery failed: %v", err)
	}
	if o.Actions.Entrega.Actor != "buyer" {
		t.Fatalf("repeat confirm overwrote actor: %s", o.Actions.Entrega.Actor)
	}
	if o.Actions.Entrega.Timestamp != firstTS {
		t.Fatal("repeat confirm overwrote timestamp")
	}
}

func TestApproveRequiresDeliveryAndInvoice(t *testing.T) {
	o := newTestOrder()
	now := time.Now()

	if err := o.SubmitDocuments("supplier-user", now, true); err != nil {
		t.Fatalf("SubmitDocuments failed: %v", err)
	}

	// 未确认收货
	if err := o.ApproveDocuments("finance", now); !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("expected ErrGuardFailed without delivery, got %v", err)
	}

	if err := o.ConfirmDelivery("buyer", now); err != nil {
		t.Fatalf("ConfirmDelivery failed: %v", err)
	}
	if err := o.ApproveDocuments("finance", now); err != nil {
		t.Fatalf("ApproveDocuments failed: %v", err)
	}
	if !o.Actions.NF.Approved.Done || !o.Actions.Boleto.Approved.Done {
		t.Fatal("approved flags not set")
	}
}

func TestApproveSkipsUnsentBoleto(t *testing.T) {
	o := newTestOrder()
	o.PaymentMethod = PaymentMethodPix
	now := time.Now()

	if err := o.SubmitDocuments("supplier-user", now, false); err != nil {
		t.Fatalf("SubmitDocuments failed: %v", err)
	}
	if err := o.ConfirmDelivery("buyer", now); err != nil {
		t.Fatalf("ConfirmDelivery failed: %v", err)
	}
	if err := o.ApproveDocuments("finance", now); err != nil {
		t.Fatalf("ApproveDocuments failed: %v", err)
	}
	if o.Actions.Boleto.Approved.Done {
		t.Fatal("boleto approved flag set although boleto was never sent")
	}
}

func TestSendToPaymentGuards(t *testing.T) {
	o := newTestOrder()
	now := time.Now()

	if err := o.SubmitDocuments("supplier-user", now, true); err != nil {
		t.Fatalf("SubmitDocuments failed: %v", err)
	}
	if err := o.ConfirmDelivery("buyer", now); err != nil {
		t.Fatalf("ConfirmDelivery failed: %v", err)
	}

	// 发票未审批
	if err := o.SendToPayment(); !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("expected ErrGuardFailed before approval, got %v", err)
	}

	if err := o.ApproveDocuments("finance", now); err != nil {
		t.Fatalf("ApproveDocuments failed: %v", err)
	}
	if err := o.SendToPayment(); err != nil {
		t.Fatalf("SendToPayment failed: %v", err)
	}
	if o.Status != OrderStatusAwaitingPayment {
		t.Fatalf("expected awaiting_payment, got %s", o.Status)
	}

	if err := o.Complete(); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if o.Status != OrderStatusCompleted {
		t.Fatalf("expected completed, got %s", o.Status)
	}
}

func TestRejectClearsApprovalsAndAllowsResubmit(t *testing.T) {
	o := newTestOrder()
	now := time.Now()

	if err := o.SubmitDocuments("supplier-user", now, true); err != nil {
		t.Fatalf("SubmitDocuments failed: %v", err)
	}
	if err := o.ConfirmDelivery("buyer", now); err != nil {
		t.Fatalf("ConfirmDelivery failed: %v", err)
	}
	if err := o.ApproveDocuments("finance", now); err != nil {
		t.Fatalf("ApproveDocuments failed: %v", err)
	}

	// 原因必填
	if err := o.Reject(""); !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("expected ErrGuardFailed for empty reason, got %v", err)
	}

	if err := o.Reject("valor divergente da nota"); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if o.Status != OrderStatusRejected {
		t.Fatalf("expected rejected, got %s", o.Status)
	}
	if o.Actions.NF.Approved.Done || o.Actions.Boleto.Approved.Done {
		t.Fatal("approval flags survived rejection")
	}
	// sent标记保留，供应商基于现有附件重新提交
	if !o.Actions.NF.Sent.Done {
		t.Fatal("sent flag cleared by rejection")
	}

	// 驳回后重新提交，清除驳回原因
	if err := o.SubmitDocuments("supplier-user", now, true); err != nil {
		t.Fatalf("resubmit after reject failed: %v", err)
	}
	if o.RejectionReason != "" {
		t.Fatalf("rejection reason not cleared: %s", o.RejectionReason)
	}
	if o.Status != OrderStatusAwaitingApproval {
		t.Fatalf("expected awaiting_approval after resubmit, got %s", o.Status)
	}
}

func TestMarkLateGuards(t *testing.T) {
	now := time.Now()

	// 交付日期未到
	o := newTestOrder()
	future := now.Add(48 * time.Hour)
	o.DeliveryDate = &future
	if err := o.MarkLate(now); !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("expected ErrGuardFailed for future delivery date, got %v", err)
	}

	// 已确认收货
	o = newTestOrder()
	if err := o.ConfirmDelivery("buyer", now); err != nil {
		t.Fatalf("ConfirmDelivery failed: %v", err)
	}
	o.Status = OrderStatusAwaitingApproval
	if err := o.MarkLate(now); !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("expected ErrGuardFailed after delivery, got %v", err)
	}

	// 正常逾期
	o = newTestOrder()
	if err := o.MarkLate(now); err != nil {
		t.Fatalf("MarkLate failed: %v", err)
	}
	if o.Status != OrderStatusDeliveryLate {
		t.Fatalf("expected delivery_late, got %s", o.Status)
	}

	// 逾期后仍可确认收货并进入待审批
	if err := o.ConfirmDelivery("buyer", now); err != nil {
		t.Fatalf("ConfirmDelivery after late failed: %v", err)
	}
	if o.Status != OrderStatusAwaitingApproval {
		t.Fatalf("expected awaiting_approval, got %s", o.Status)
	}
}

func TestRecomputeTotal(t *testing.T) {
	o := newTestOrder()
	o.Items = []OrderItem{
		{Quantity: 3, UnitValue: 25.5},
		{Quantity: 2, UnitValue: 100},
	}
	o.RecomputeTotal()
	if o.Total != 276.5 {
		t.Fatalf("expected total 276.5, got %v", o.Total)
	}
	if o.Items[0].Total != 76.5 {
		t.Fatalf("expected item total 76.5, got %v", o.Items[0].Total)
	}
}
