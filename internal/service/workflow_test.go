package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careops/clinicflow/internal/domain"
	"github.com/careops/clinicflow/internal/domain/billing"
	"github.com/careops/clinicflow/internal/domain/pharmacy"
	"github.com/careops/clinicflow/internal/domain/visit"
)

// TestClinicalToBillingWorkflow walks one encounter end to end: register a
// patient, open a visit, author and dispense a prescription, close the
// visit, invoice it and settle the invoice.
func TestClinicalToBillingWorkflow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	nurse := staffActor(domain.RoleNurse)
	doctor := staffActor(domain.RoleDoctor)
	pharmacist := staffActor(domain.RolePharmacist)
	finance := staffActor(domain.RoleFinance)

	p, err := env.patientSvc.CreatePatient(ctx, nurse, patientCreateCmd("Ava Lindgren"), "127.0.0.1")
	require.NoError(t, err)

	v, err := env.visitSvc.Open(ctx, nurse, &visit.OpenVisitCommand{
		PatientID:      p.ID,
		Department:     "Internal Medicine",
		ChiefComplaint: "persistent cough",
	}, "127.0.0.1")
	require.NoError(t, err)

	drug := seedDrug(t, env, "D001", "12.50", 5)

	rx, err := env.prescriptionSvc.Create(ctx, doctor, &pharmacy.CreatePrescriptionCommand{VisitID: v.ID}, "127.0.0.1")
	require.NoError(t, err)
	_, err = env.prescriptionSvc.AddItem(ctx, doctor, &pharmacy.AddItemCommand{
		PrescriptionID: rx.ID, DrugID: drug.ID, Quantity: 2, Dosage: "500mg tid",
	}, "127.0.0.1")
	require.NoError(t, err)
	_, err = env.prescriptionSvc.Issue(ctx, doctor, rx.ID, "127.0.0.1")
	require.NoError(t, err)

	env.clock.Advance(20 * time.Minute)
	dispensed, err := env.prescriptionSvc.Dispense(ctx, pharmacist, rx.ID, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, pharmacy.StatusDispensed, dispensed.Status)

	inv, err := env.inventorySvc.GetByDrug(ctx, drug.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, inv.Quantity)

	_, err = env.visitSvc.Close(ctx, doctor, v.ID, "acute bronchitis", nil, "127.0.0.1")
	require.NoError(t, err)

	invoice, err := env.billingSvc.CreateInvoice(ctx, finance, &billing.CreateInvoiceCommand{VisitID: v.ID}, "127.0.0.1")
	require.NoError(t, err)
	assert.True(t, invoice.TotalAmount.Equal(decimal.RequireFromString("25.00")),
		"got total %s", invoice.TotalAmount)

	env.clock.Advance(10 * time.Minute)
	_, settled, err := env.billingSvc.ApplyPayment(ctx, finance, &billing.ApplyPaymentCommand{
		InvoiceID: invoice.ID,
		Amount:    decimal.RequireFromString("25.00"),
		Method:    billing.MethodAlipay,
	}, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPaid, settled.Status)
	require.NotNil(t, settled.PaidAt)
	assert.Equal(t, env.clock.Now(), *settled.PaidAt)

	// The patient sees their own records through the same services.
	me := patientActor(p.ID)
	visits, err := env.visitSvc.ListVisits(ctx, me, &visit.ListVisitsQuery{})
	require.NoError(t, err)
	require.Len(t, visits.Visits, 1)
	assert.Equal(t, visit.StatusClosed, visits.Visits[0].Status)

	mine, err := env.billingSvc.GetInvoice(ctx, me, invoice.ID)
	require.NoError(t, err)
	assert.True(t, mine.Outstanding().IsZero())
}
