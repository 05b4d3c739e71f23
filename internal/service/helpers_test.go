package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careops/clinicflow/internal/domain"
	"github.com/careops/clinicflow/internal/domain/patient"
	"github.com/careops/clinicflow/pkg/clock"
)

var testStart = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// testEnv wires the full service graph over in-memory repositories.
type testEnv struct {
	clock    *clock.Fake
	gate     *Gate
	audit    *AuditService
	patients *fakePatientRepo
	staff    *fakeStaffRepo
	visits   *fakeVisitRepo
	pharmacy *fakePharmacyRepo
	billing  *fakeBillingRepo
	users    *fakeUserRepo

	patientSvc      *PatientService
	staffSvc        *StaffService
	visitSvc        *VisitService
	prescriptionSvc *PrescriptionService
	drugSvc         *DrugService
	inventorySvc    *InventoryService
	billingSvc      *BillingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := zap.NewNop()
	clk := clock.NewFake(testStart)
	gate := NewGate(nil)

	env := &testEnv{
		clock:    clk,
		gate:     gate,
		patients: newFakePatientRepo(),
		staff:    newFakeStaffRepo(),
		visits:   newFakeVisitRepo(),
		pharmacy: newFakePharmacyRepo(),
		billing:  newFakeBillingRepo(),
		users:    newFakeUserRepo(),
	}

	env.audit = NewAuditService(&fakeAuditRepo{}, nil, log)
	t.Cleanup(env.audit.Shutdown)

	rxRepo := prescriptionRepoAdapter{env.pharmacy}

	env.patientSvc = NewPatientService(env.patients, gate, env.audit, clk, log)
	env.staffSvc = NewStaffService(env.staff, env.users, gate, env.audit, log)
	env.visitSvc = NewVisitService(env.visits, env.patients, env.staff, gate, env.audit, clk, nil, log)
	env.prescriptionSvc = NewPrescriptionService(rxRepo, env.pharmacy, env.visits, gate, env.audit, clk, nil, log)
	env.drugSvc = NewDrugService(env.pharmacy, gate, env.audit, log)
	env.inventorySvc = NewInventoryService(env.pharmacy, env.pharmacy, gate, env.audit, nil, log)
	env.billingSvc = NewBillingService(env.billing, env.visits, rxRepo, gate, env.audit, clk, nil, log)

	return env
}

func patientCreateCmd(name string) *patient.CreatePatientCommand {
	return &patient.CreatePatientCommand{
		Name:   name,
		Gender: patient.GenderFemale,
		Phone:  "13800001111",
	}
}

func staffActor(role domain.Role) domain.Actor {
	return domain.Actor{
		Kind:        domain.ActorStaff,
		UserID:      uuid.New(),
		StaffID:     uuid.New(),
		StaffNo:     "T-" + uuid.NewString()[:8],
		Role:        role,
		StaffActive: true,
	}
}

func inactiveStaffActor(role domain.Role) domain.Actor {
	a := staffActor(role)
	a.StaffActive = false
	return a
}

func patientActor(patientID uuid.UUID) domain.Actor {
	return domain.Actor{
		Kind:      domain.ActorPatient,
		UserID:    uuid.New(),
		PatientID: patientID,
	}
}
