package service

import (
	"github.com/careops/clinicflow/internal/domain"
	"github.com/careops/clinicflow/pkg/metrics"
)

// Operation names every gated mutating call in the workflow. The capability
// table below is the single source of truth for which role may trigger
// which transition.
type Operation string

const (
	OpPatientCreate     Operation = "patient.create"
	OpPatientUpdate     Operation = "patient.update"
	OpPatientDelete     Operation = "patient.delete"
	OpStaffCreate       Operation = "staff.create"
	OpStaffSetActive    Operation = "staff.set_active"
	OpVisitOpen         Operation = "visit.open"
	OpVisitAssignDoctor Operation = "visit.assign_doctor"
	OpVisitClose        Operation = "visit.close"
	OpVisitCancel       Operation = "visit.cancel"
	OpRxCreate          Operation = "prescription.create"
	OpRxAddItem         Operation = "prescription.add_item"
	OpRxIssue           Operation = "prescription.issue"
	OpRxDispense        Operation = "prescription.dispense"
	OpRxCancel          Operation = "prescription.cancel"
	OpDrugCreate        Operation = "drug.create"
	OpDrugUpdate        Operation = "drug.update"
	OpInventoryRestock  Operation = "inventory.restock"
	OpInvoiceCreate     Operation = "invoice.create"
	OpPaymentApply      Operation = "payment.apply"
	OpInvoiceRefund     Operation = "invoice.refund"
)

// capabilities maps each operation to the staff roles allowed to invoke it.
// Admin is implicitly allowed everywhere and is not listed.
var capabilities = map[Operation][]domain.Role{
	OpPatientCreate:     {domain.RoleNurse, domain.RoleDoctor},
	OpPatientUpdate:     {domain.RoleNurse, domain.RoleDoctor},
	OpPatientDelete:     {},
	OpStaffCreate:       {},
	OpStaffSetActive:    {},
	OpVisitOpen:         {domain.RoleDoctor, domain.RoleNurse},
	OpVisitAssignDoctor: {domain.RoleDoctor, domain.RoleNurse},
	OpVisitClose:        {domain.RoleDoctor},
	OpVisitCancel:       {domain.RoleDoctor, domain.RoleNurse},
	OpRxCreate:          {domain.RoleDoctor},
	OpRxAddItem:         {domain.RoleDoctor},
	OpRxIssue:           {domain.RoleDoctor},
	OpRxDispense:        {domain.RolePharmacist},
	OpRxCancel:          {domain.RoleDoctor},
	OpDrugCreate:        {domain.RolePharmacist},
	OpDrugUpdate:        {domain.RolePharmacist},
	OpInventoryRestock:  {domain.RolePharmacist},
	OpInvoiceCreate:     {domain.RoleFinance},
	OpPaymentApply:      {domain.RoleFinance},
	OpInvoiceRefund:     {domain.RoleFinance},
}

// Gate is the authorization check wrapping every mutating workflow
// operation. It runs strictly before the wrapped operation's own
// precondition checks.
type Gate struct {
	collector *metrics.Collector
}

// NewGate builds a gate. collector may be nil.
func NewGate(collector *metrics.Collector) *Gate {
	return &Gate{collector: collector}
}

// Authorize decides whether the actor may invoke op.
//
// Order of checks, per the gate's contract:
//  1. an actor resolved to an inactive staff profile fails with
//     ErrAccountDisabled regardless of role match;
//  2. an actor with no staff role (patients, unknowns) fails with
//     ErrUnauthorized;
//  3. admin passes everything; otherwise the role must appear in the
//     operation's capability set.
func (g *Gate) Authorize(actor domain.Actor, op Operation) error {
	if actor.IsStaff() && !actor.StaffActive {
		g.deny(op, "account_disabled")
		return ErrAccountDisabled
	}

	if !actor.IsStaff() || !actor.Role.IsStaff() {
		g.deny(op, "no_role")
		return ErrUnauthorized
	}

	if actor.Role == domain.RoleAdmin {
		return nil
	}

	for _, allowed := range capabilities[op] {
		if actor.Role == allowed {
			return nil
		}
	}

	g.deny(op, "role_mismatch")
	return ErrUnauthorized
}

func (g *Gate) deny(op Operation, reason string) {
	if g.collector != nil {
		g.collector.AuthzDenialsTotal.WithLabelValues(string(op), reason).Inc()
	}
}
