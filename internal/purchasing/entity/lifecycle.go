package entity

import (
	"errors"
	"fmt"
	"time"
)

// 订单生命周期事件
type OrderEvent string

const (
	EventSubmitDocuments  OrderEvent = "submit_documents"
	EventConfirmDelivery  OrderEvent = "confirm_delivery"
	EventApproveDocuments OrderEvent = "approve_documents"
	EventReject           OrderEvent = "reject"
	EventSendToPayment    OrderEvent = "send_to_payment"
	EventComplete         OrderEvent = "complete"
	EventMarkLate         OrderEvent = "mark_late"
)

var (
	ErrInvalidTransition = errors.New("状态转换不允许")
	ErrGuardFailed       = errors.New("前置条件不满足")
)

// eventSources 事件允许的来源状态
var eventSources = map[OrderEvent][]string{
	EventSubmitDocuments:  {OrderStatusAwaitingDocuments, OrderStatusRejected, OrderStatusDeliveryLate},
	EventConfirmDelivery:  {OrderStatusAwaitingDocuments, OrderStatusAwaitingApproval, OrderStatusDeliveryLate},
	EventApproveDocuments: {OrderStatusAwaitingApproval},
	EventReject:           {OrderStatusAwaitingApproval, OrderStatusAwaitingDocuments},
	EventSendToPayment:    {OrderStatusAwaitingApproval},
	EventComplete:         {OrderStatusAwaitingPayment},
	EventMarkLate:         {OrderStatusAwaitingDocuments, OrderStatusAwaitingApproval},
}

// eventTargets 事件的目标状态（approve_documents不改状态）
var eventTargets = map[OrderEvent]string{
	EventSubmitDocuments:  OrderStatusAwaitingApproval,
	EventConfirmDelivery:  OrderStatusAwaitingApproval,
	EventApproveDocuments: OrderStatusAwaitingApproval,
	EventReject:           OrderStatusRejected,
	EventSendToPayment:    OrderStatusAwaitingPayment,
	EventComplete:         OrderStatusCompleted,
	EventMarkLate:         OrderStatusDeliveryLate,
}

// CanFire 判断事件在当前状态下是否允许触发
func (o *PurchaseOrder) CanFire(ev OrderEvent) bool {
	for _, s := range eventSources[ev] {
		if o.Status == s {
			return true
		}
	}
	return false
}

func (o *PurchaseOrder) checkFire(ev OrderEvent) error {
	if !o.CanFire(ev) {
		return fmt.Errorf("%w: %s 状态下不能执行 %s", ErrInvalidTransition, o.Status, ev)
	}
	return nil
}

// SubmitDocuments 供应商提交单据：标记nf.sent（及boleto.sent），
// 清除驳回原因，进入待审批。重复提交覆盖附件但不重置已获得的审批标记。
func (o *PurchaseOrder) SubmitDocuments(actor string, now time.Time, withBoleto bool) error {
	if err := o.checkFire(EventSubmitDocuments); err != nil {
		return err
	}

	o.Actions.NF.Sent = ActionInfo{Done: true, Actor: actor, Timestamp: &now}
	if withBoleto {
		o.Actions.Boleto.Sent = ActionInfo{Done: true, Actor: actor, Timestamp: &now}
	}
	o.RejectionReason = ""
	o.Status = eventTargets[EventSubmitDocuments]
	return nil
}

// ConfirmDelivery 确认收货。重复确认是安全的：已确认时保持原标记不变。
func (o *PurchaseOrder) ConfirmDelivery(actor string, now time.Time) error {
	if o.Actions.Entrega.Done {
		// 幂等：终态一致
		if o.Status == OrderStatusAwaitingDocuments || o.Status == OrderStatusDeliveryLate {
			o.Status = OrderStatusAwaitingApproval
		}
		return nil
	}
	if err := o.checkFire(EventConfirmDelivery); err != nil {
		return err
	}

	o.Actions.Entrega = ActionInfo{Done: true, Actor: actor, Timestamp: &now}
	o.Status = eventTargets[EventConfirmDelivery]
	return nil
}

// ApproveDocuments 财务审批单据：只审批实际已发送的单据类型，要求已确认收货。
func (o *PurchaseOrder) ApproveDocuments(actor string, now time.Time) error {
	if err := o.checkFire(EventApproveDocuments); err != nil {
		return err
	}
	if !o.Actions.Entrega.Done {
		return fmt.Errorf("%w: 需要先确认收货", ErrGuardFailed)
	}
	if !o.Actions.NF.Sent.Done {
		return fmt.Errorf("%w: 发票尚未提交", ErrGuardFailed)
	}

	o.Actions.NF.Approved = ActionInfo{Done: true, Actor: actor, Timestamp: &now}
	if o.Actions.Boleto.Sent.Done {
		o.Actions.Boleto.Approved = ActionInfo{Done: true, Actor: actor, Timestamp: &now}
	}
	return nil
}

// Reject 财务驳回：原因必填；不重置sent标记，供应商在现有附件上重新提交。
// 已有的审批标记作废，重新提交后需重新走审批。
func (o *PurchaseOrder) Reject(reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: 驳回原因不能为空", ErrGuardFailed)
	}
	if err := o.checkFire(EventReject); err != nil {
		return err
	}

	o.Status = eventTargets[EventReject]
	o.RejectionReason = reason
	o.Actions.NF.Approved = ActionInfo{}
	o.Actions.Boleto.Approved = ActionInfo{}
	return nil
}

// SendToPayment 送交付款：要求发票已审批、boleto（如适用）已审批且已确认收货。
func (o *PurchaseOrder) SendToPayment() error {
	if err := o.checkFire(EventSendToPayment); err != nil {
		return err
	}
	if !o.Actions.Entrega.Done {
		return fmt.Errorf("%w: 需要先确认收货", ErrGuardFailed)
	}
	if !o.Actions.NF.Approved.Done {
		return fmt.Errorf("%w: 发票尚未审批", ErrGuardFailed)
	}
	if o.Actions.Boleto.Sent.Done && !o.Actions.Boleto.Approved.Done {
		return fmt.Errorf("%w: boleto尚未审批", ErrGuardFailed)
	}

	o.Status = eventTargets[EventSendToPayment]
	return nil
}

// Complete 付款完成（由付款处理方触发）
func (o *PurchaseOrder) Complete() error {
	if err := o.checkFire(EventComplete); err != nil {
		return err
	}
	o.Status = eventTargets[EventComplete]
	return nil
}

// MarkLate 标记交付逾期：交付日期已过且未确认收货。
func (o *PurchaseOrder) MarkLate(now time.Time) error {
	if err := o.checkFire(EventMarkLate); err != nil {
		return err
	}
	if o.Actions.Entrega.Done {
		return fmt.Errorf("%w: 已确认收货的订单不能标记逾期", ErrGuardFailed)
	}
	if o.DeliveryDate == nil || !o.DeliveryDate.Before(now) {
		return fmt.Errorf("%w: 交付日期未到", ErrGuardFailed)
	}
	o.Status = eventTargets[EventMarkLate]
	return nil
}
