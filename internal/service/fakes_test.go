package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/careops/clinicflow/internal/domain"
	"github.com/careops/clinicflow/internal/domain/billing"
	"github.com/careops/clinicflow/internal/domain/patient"
	"github.com/careops/clinicflow/internal/domain/pharmacy"
	"github.com/careops/clinicflow/internal/domain/staff"
	"github.com/careops/clinicflow/internal/domain/visit"
)

// In-memory repositories for service tests. They honor the same contracts
// as the gorm implementations: compare-and-swap status writes, atomic
// all-or-nothing dispense, and serialized payment application.

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (f *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

type fakeStaffRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*staff.StaffProfile
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{profiles: make(map[uuid.UUID]*staff.StaffProfile)}
}

func (f *fakeStaffRepo) Create(_ context.Context, s *staff.StaffProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.profiles {
		if existing.StaffNo == s.StaffNo {
			return staff.ErrStaffAlreadyExists
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	f.profiles[s.ID] = &cp
	return nil
}

func (f *fakeStaffRepo) GetByID(_ context.Context, id uuid.UUID) (*staff.StaffProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.profiles[id]
	if !ok {
		return nil, staff.ErrStaffNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStaffRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*staff.StaffProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.profiles {
		if s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, staff.ErrStaffNotFound
}

func (f *fakeStaffRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.profiles[id]
	if !ok {
		return staff.ErrStaffNotFound
	}
	s.IsActive = active
	return nil
}

func (f *fakeStaffRepo) List(_ context.Context, q *staff.ListStaffQuery) (*staff.PagedStaff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*staff.StaffProfile
	for _, s := range f.profiles {
		if q.Role != nil && s.Role != *q.Role {
			continue
		}
		if q.Active != nil && s.IsActive != *q.Active {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StaffNo < out[j].StaffNo })
	return &staff.PagedStaff{
		Staff: out, TotalCount: int64(len(out)),
		Page: q.Page, PageSize: q.PageSize, TotalPages: 1,
	}, nil
}

type fakePatientRepo struct {
	mu       sync.Mutex
	patients map[uuid.UUID]*patient.Patient
	inUse    map[uuid.UUID]bool
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{
		patients: make(map[uuid.UUID]*patient.Patient),
		inUse:    make(map[uuid.UUID]bool),
	}
}

func (f *fakePatientRepo) Create(_ context.Context, p *patient.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.IDNumber != nil {
		for _, existing := range f.patients {
			if existing.IDNumber != nil && *existing.IDNumber == *p.IDNumber {
				return patient.ErrPatientAlreadyExists
			}
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	f.patients[p.ID] = &cp
	return nil
}

func (f *fakePatientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.patients[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePatientRepo) GetByPatientNo(_ context.Context, patientNo string) (*patient.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.patients {
		if p.PatientNo == patientNo {
			cp := *p
			return &cp, nil
		}
	}
	return nil, patient.ErrPatientNotFound
}

func (f *fakePatientRepo) Update(_ context.Context, id uuid.UUID, cmd *patient.UpdatePatientCommand) (*patient.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.patients[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	if cmd.Phone != nil {
		p.Phone = *cmd.Phone
	}
	if cmd.Address != nil {
		p.Address = *cmd.Address
	}
	if cmd.EmergencyContact != nil {
		p.EmergencyContact = *cmd.EmergencyContact
	}
	if cmd.EmergencyPhone != nil {
		p.EmergencyPhone = *cmd.EmergencyPhone
	}
	cp := *p
	return &cp, nil
}

func (f *fakePatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.patients[id]; !ok {
		return patient.ErrPatientNotFound
	}
	if f.inUse[id] {
		return patient.ErrPatientInUse
	}
	delete(f.patients, id)
	return nil
}

func (f *fakePatientRepo) List(_ context.Context, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*patient.Patient
	for _, p := range f.patients {
		if q.Search != "" {
			needle := strings.ToLower(q.Search)
			if !strings.Contains(strings.ToLower(p.Name), needle) &&
				!strings.Contains(strings.ToLower(p.PatientNo), needle) {
				continue
			}
		}
		cp := *p
		out = append(out, &cp)
	}
	return &patient.PagedPatients{
		Patients: out, TotalCount: int64(len(out)),
		Page: q.Page, PageSize: q.PageSize, TotalPages: 1,
	}, nil
}

func (f *fakePatientRepo) ExistsByIDNumber(_ context.Context, idNumber string, excludeID *uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, p := range f.patients {
		if excludeID != nil && id == *excludeID {
			continue
		}
		if p.IDNumber != nil && *p.IDNumber == idNumber {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePatientRepo) markInUse(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inUse[id] = true
}

type fakeVisitRepo struct {
	mu     sync.Mutex
	visits map[uuid.UUID]*visit.Visit
}

func newFakeVisitRepo() *fakeVisitRepo {
	return &fakeVisitRepo{visits: make(map[uuid.UUID]*visit.Visit)}
}

func (f *fakeVisitRepo) Create(_ context.Context, v *visit.Visit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	cp := *v
	f.visits[v.ID] = &cp
	return nil
}

func (f *fakeVisitRepo) GetByID(_ context.Context, id uuid.UUID) (*visit.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.visits[id]
	if !ok {
		return nil, visit.ErrVisitNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVisitRepo) GetByVisitNo(_ context.Context, visitNo string) (*visit.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.visits {
		if v.VisitNo == visitNo {
			cp := *v
			return &cp, nil
		}
	}
	return nil, visit.ErrVisitNotFound
}

func (f *fakeVisitRepo) UpdateStatusFrom(_ context.Context, v *visit.Visit, from visit.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.visits[v.ID]
	if !ok {
		return visit.ErrVisitNotFound
	}
	if stored.Status != from {
		return visit.ErrInvalidTransition
	}
	cp := *v
	f.visits[v.ID] = &cp
	return nil
}

func (f *fakeVisitRepo) AssignDoctor(_ context.Context, id uuid.UUID, doctorID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.visits[id]
	if !ok {
		return visit.ErrVisitNotFound
	}
	if v.Status != visit.StatusOpen {
		return visit.ErrVisitNotOpen
	}
	v.DoctorID = &doctorID
	return nil
}

func (f *fakeVisitRepo) List(_ context.Context, q *visit.ListVisitsQuery) (*visit.PagedVisits, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*visit.Visit
	for _, v := range f.visits {
		if q.PatientID != nil && v.PatientID != *q.PatientID {
			continue
		}
		if q.DoctorID != nil && (v.DoctorID == nil || *v.DoctorID != *q.DoctorID) {
			continue
		}
		if q.Status != nil && v.Status != *q.Status {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	return &visit.PagedVisits{
		Visits: out, TotalCount: int64(len(out)),
		Page: q.Page, PageSize: q.PageSize, TotalPages: 1,
	}, nil
}

// fakePharmacyRepo backs all three pharmacy repositories with one store so
// Dispense can deduct inventory under a single lock, mirroring its
// transactional contract.
type fakePharmacyRepo struct {
	mu            sync.Mutex
	drugs         map[uuid.UUID]*pharmacy.Drug
	inventory     map[uuid.UUID]*pharmacy.Inventory
	prescriptions map[uuid.UUID]*pharmacy.Prescription
}

func newFakePharmacyRepo() *fakePharmacyRepo {
	return &fakePharmacyRepo{
		drugs:         make(map[uuid.UUID]*pharmacy.Drug),
		inventory:     make(map[uuid.UUID]*pharmacy.Inventory),
		prescriptions: make(map[uuid.UUID]*pharmacy.Prescription),
	}
}

func (f *fakePharmacyRepo) Create(_ context.Context, d *pharmacy.Drug, inv *pharmacy.Inventory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.drugs {
		if existing.DrugCode == d.DrugCode {
			return pharmacy.ErrDrugAlreadyExists
		}
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	inv.DrugID = d.ID
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	dCp, iCp := *d, *inv
	f.drugs[d.ID] = &dCp
	f.inventory[d.ID] = &iCp
	return nil
}

func (f *fakePharmacyRepo) GetByID(_ context.Context, id uuid.UUID) (*pharmacy.Drug, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drugs[id]
	if !ok {
		return nil, pharmacy.ErrDrugNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakePharmacyRepo) GetByCode(_ context.Context, drugCode string) (*pharmacy.Drug, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.drugs {
		if d.DrugCode == drugCode {
			cp := *d
			return &cp, nil
		}
	}
	return nil, pharmacy.ErrDrugNotFound
}

func (f *fakePharmacyRepo) Update(_ context.Context, id uuid.UUID, cmd *pharmacy.UpdateDrugCommand) (*pharmacy.Drug, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drugs[id]
	if !ok {
		return nil, pharmacy.ErrDrugNotFound
	}
	if cmd.Name != nil {
		d.Name = *cmd.Name
	}
	if cmd.SalePrice != nil {
		d.SalePrice = *cmd.SalePrice
	}
	if cmd.PurchasePrice != nil {
		d.PurchasePrice = *cmd.PurchasePrice
	}
	if cmd.IsActive != nil {
		d.IsActive = *cmd.IsActive
	}
	cp := *d
	return &cp, nil
}

func (f *fakePharmacyRepo) List(_ context.Context, q *pharmacy.ListDrugsQuery) (*pharmacy.PagedDrugs, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*pharmacy.Drug
	for _, d := range f.drugs {
		if q.ActiveOnly && !d.IsActive {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return &pharmacy.PagedDrugs{
		Drugs: out, TotalCount: int64(len(out)),
		Page: q.Page, PageSize: q.PageSize, TotalPages: 1,
	}, nil
}

func (f *fakePharmacyRepo) GetByDrugID(_ context.Context, drugID uuid.UUID) (*pharmacy.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.inventory[drugID]
	if !ok {
		return nil, pharmacy.ErrInventoryNotFound
	}
	cp := *inv
	return &cp, nil
}

func (f *fakePharmacyRepo) Restock(_ context.Context, drugID uuid.UUID, delta int) (*pharmacy.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.inventory[drugID]
	if !ok {
		return nil, pharmacy.ErrInventoryNotFound
	}
	inv.Quantity += delta
	cp := *inv
	return &cp, nil
}

func (f *fakePharmacyRepo) ListLowStock(_ context.Context) ([]*pharmacy.InventoryView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*pharmacy.InventoryView
	for drugID, inv := range f.inventory {
		if !inv.LowStock() {
			continue
		}
		d := f.drugs[drugID]
		out = append(out, &pharmacy.InventoryView{
			Inventory: *inv,
			DrugCode:  d.DrugCode,
			DrugName:  d.Name,
		})
	}
	return out, nil
}

func (f *fakePharmacyRepo) CreatePrescription(_ context.Context, p *pharmacy.Prescription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.prescriptions {
		if existing.VisitID == p.VisitID {
			return pharmacy.ErrDuplicateVisit
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := clonePrescription(p)
	f.prescriptions[p.ID] = cp
	return nil
}

func (f *fakePharmacyRepo) GetPrescription(_ context.Context, id uuid.UUID) (*pharmacy.Prescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prescriptions[id]
	if !ok {
		return nil, pharmacy.ErrPrescriptionNotFound
	}
	return clonePrescription(p), nil
}

func (f *fakePharmacyRepo) GetByVisitID(_ context.Context, visitID uuid.UUID) (*pharmacy.Prescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.prescriptions {
		if p.VisitID == visitID {
			return clonePrescription(p), nil
		}
	}
	return nil, pharmacy.ErrPrescriptionNotFound
}

func (f *fakePharmacyRepo) AddItem(_ context.Context, item *pharmacy.PrescriptionItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prescriptions[item.PrescriptionID]
	if !ok {
		return pharmacy.ErrPrescriptionNotFound
	}
	for _, existing := range p.Items {
		if existing.DrugID == item.DrugID {
			return pharmacy.ErrDuplicateDrug
		}
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	cp := *item
	p.Items = append(p.Items, &cp)
	return nil
}

func (f *fakePharmacyRepo) UpdateStatusFrom(_ context.Context, p *pharmacy.Prescription, from pharmacy.PrescriptionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.prescriptions[p.ID]
	if !ok {
		return pharmacy.ErrPrescriptionNotFound
	}
	if stored.Status != from {
		return pharmacy.ErrInvalidState
	}
	stored.Status = p.Status
	stored.IssuedAt = p.IssuedAt
	stored.DispensedAt = p.DispensedAt
	return nil
}

func (f *fakePharmacyRepo) Dispense(_ context.Context, id uuid.UUID, dispensedAt time.Time) (*pharmacy.Prescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prescriptions[id]
	if !ok {
		return nil, pharmacy.ErrPrescriptionNotFound
	}
	if p.Status != pharmacy.StatusIssued {
		return nil, pharmacy.ErrInvalidState
	}
	if len(p.Items) == 0 {
		return nil, pharmacy.ErrEmptyPrescription
	}

	// Check every line before deducting any.
	for _, item := range p.Items {
		inv, ok := f.inventory[item.DrugID]
		if !ok {
			return nil, pharmacy.ErrInventoryNotFound
		}
		if inv.Quantity < item.Quantity {
			return nil, &pharmacy.InsufficientStockError{
				DrugCode:  f.drugs[item.DrugID].DrugCode,
				Requested: item.Quantity,
				OnHand:    inv.Quantity,
			}
		}
	}
	for _, item := range p.Items {
		f.inventory[item.DrugID].Quantity -= item.Quantity
	}

	p.Status = pharmacy.StatusDispensed
	at := dispensedAt
	p.DispensedAt = &at
	return clonePrescription(p), nil
}

func (f *fakePharmacyRepo) ListPrescriptions(_ context.Context, q *pharmacy.ListPrescriptionsQuery) (*pharmacy.PagedPrescriptions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*pharmacy.Prescription
	for _, p := range f.prescriptions {
		if q.Status != nil && p.Status != *q.Status {
			continue
		}
		out = append(out, clonePrescription(p))
	}
	return &pharmacy.PagedPrescriptions{
		Prescriptions: out, TotalCount: int64(len(out)),
		Page: q.Page, PageSize: q.PageSize, TotalPages: 1,
	}, nil
}

func clonePrescription(p *pharmacy.Prescription) *pharmacy.Prescription {
	cp := *p
	cp.Items = make([]*pharmacy.PrescriptionItem, len(p.Items))
	for i, item := range p.Items {
		itemCp := *item
		cp.Items[i] = &itemCp
	}
	return &cp
}

// prescriptionRepoAdapter renames the prescription methods onto the
// pharmacy.PrescriptionRepository interface, since fakePharmacyRepo also
// implements DrugRepository whose Create has a different shape.
type prescriptionRepoAdapter struct {
	*fakePharmacyRepo
}

func (a prescriptionRepoAdapter) Create(ctx context.Context, p *pharmacy.Prescription) error {
	return a.CreatePrescription(ctx, p)
}

func (a prescriptionRepoAdapter) GetByID(ctx context.Context, id uuid.UUID) (*pharmacy.Prescription, error) {
	return a.GetPrescription(ctx, id)
}

func (a prescriptionRepoAdapter) List(ctx context.Context, q *pharmacy.ListPrescriptionsQuery) (*pharmacy.PagedPrescriptions, error) {
	return a.ListPrescriptions(ctx, q)
}

type fakeBillingRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*billing.Invoice
}

func newFakeBillingRepo() *fakeBillingRepo {
	return &fakeBillingRepo{invoices: make(map[uuid.UUID]*billing.Invoice)}
}

func (f *fakeBillingRepo) CreateInvoice(_ context.Context, inv *billing.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.invoices {
		if existing.VisitID == inv.VisitID {
			return billing.ErrDuplicateVisit
		}
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	cp := cloneInvoice(inv)
	f.invoices[inv.ID] = cp
	return nil
}

func (f *fakeBillingRepo) GetInvoiceByID(_ context.Context, id uuid.UUID) (*billing.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[id]
	if !ok {
		return nil, billing.ErrInvoiceNotFound
	}
	return cloneInvoice(inv), nil
}

func (f *fakeBillingRepo) GetInvoiceByVisitID(_ context.Context, visitID uuid.UUID) (*billing.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invoices {
		if inv.VisitID == visitID {
			return cloneInvoice(inv), nil
		}
	}
	return nil, billing.ErrInvoiceNotFound
}

func (f *fakeBillingRepo) ApplyPayment(_ context.Context, invoiceID uuid.UUID, p *billing.Payment, paidAt time.Time) (*billing.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[invoiceID]
	if !ok {
		return nil, billing.ErrInvoiceNotFound
	}
	if inv.Status != billing.StatusUnpaid {
		return nil, billing.ErrInvalidState
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.InvoiceID = invoiceID
	p.PaidAt = paidAt
	cp := *p
	inv.Payments = append(inv.Payments, &cp)
	if inv.PaidTotal().GreaterThanOrEqual(inv.TotalAmount) {
		inv.Status = billing.StatusPaid
		at := paidAt
		inv.PaidAt = &at
	}
	return cloneInvoice(inv), nil
}

func (f *fakeBillingRepo) MarkRefunded(_ context.Context, id uuid.UUID) (*billing.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[id]
	if !ok {
		return nil, billing.ErrInvoiceNotFound
	}
	if inv.Status != billing.StatusPaid {
		return nil, billing.ErrInvalidState
	}
	inv.Status = billing.StatusRefunded
	return cloneInvoice(inv), nil
}

func (f *fakeBillingRepo) ListInvoices(_ context.Context, q *billing.ListInvoicesQuery) (*billing.PagedInvoices, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*billing.Invoice
	for _, inv := range f.invoices {
		if q.PatientID != nil && inv.PatientID != *q.PatientID {
			continue
		}
		if q.Status != nil && inv.Status != *q.Status {
			continue
		}
		out = append(out, cloneInvoice(inv))
	}
	return &billing.PagedInvoices{
		Invoices: out, TotalCount: int64(len(out)),
		Page: q.Page, PageSize: q.PageSize, TotalPages: 1,
	}, nil
}

func (f *fakeBillingRepo) ListPayments(_ context.Context, invoiceID uuid.UUID) ([]*billing.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[invoiceID]
	if !ok {
		return nil, billing.ErrInvoiceNotFound
	}
	out := make([]*billing.Payment, len(inv.Payments))
	for i, p := range inv.Payments {
		cp := *p
		out[i] = &cp
	}
	return out, nil
}

func cloneInvoice(inv *billing.Invoice) *billing.Invoice {
	cp := *inv
	cp.Payments = make([]*billing.Payment, len(inv.Payments))
	for i, p := range inv.Payments {
		pCp := *p
		cp.Payments[i] = &pCp
	}
	return &cp
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

// put overwrites a stored user in place, for tests that need to flip
// flags the repository interface does not expose.
func (f *fakeUserRepo) put(u *domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrInvalidCredentials
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) UpdateLoginAttempt(_ context.Context, id uuid.UUID, success bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return ErrInvalidCredentials
	}
	if success {
		u.FailedLoginCount = 0
		u.LockedUntil = nil
	} else {
		u.FailedLoginCount++
		if u.FailedLoginCount >= 5 {
			t := time.Now().Add(15 * time.Minute)
			u.LockedUntil = &t
		}
	}
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return ErrInvalidCredentials
	}
	u.PasswordHash = hash
	return nil
}
