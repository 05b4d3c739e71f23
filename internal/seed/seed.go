// Package seed loads a small demo dataset: one staff account per role, a
// drug catalog with stocked inventory, and a sample patient. Seeding is
// idempotent; rows that already exist are left alone.
package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/careops/clinicflow/internal/domain"
	"github.com/careops/clinicflow/internal/domain/patient"
	"github.com/careops/clinicflow/internal/domain/pharmacy"
	"github.com/careops/clinicflow/internal/domain/staff"
)

// DemoPassword is shared by every seeded account. Demo use only.
const DemoPassword = "clinicflow-demo-1"

type staffTemplate struct {
	staffNo    string
	name       string
	role       domain.Role
	department string
	position   string
	specialty  string
}

var staffTemplates = []staffTemplate{
	{"D001", "Grace Zhang", domain.RoleDoctor, "Internal Medicine", "Chief Physician", "Cardiology"},
	{"D002", "Liam Carter", domain.RoleDoctor, "Surgery", "Associate Chief", "General Surgery"},
	{"N001", "Mia Torres", domain.RoleNurse, "Internal Medicine", "Head Nurse", ""},
	{"P001", "Omar Haddad", domain.RolePharmacist, "Pharmacy", "Supervising Pharmacist", ""},
	{"F001", "Elena Petrova", domain.RoleFinance, "Finance", "Billing Specialist", ""},
	{"A001", "System Admin", domain.RoleAdmin, "Administration", "System Administrator", ""},
}

type drugTemplate struct {
	code       string
	name       string
	spec       string
	unit       string
	salePrice  string
	maker      string
	category   string
	rxRequired bool
	quantity   int
}

var drugTemplates = []drugTemplate{
	{"D001", "Amoxicillin Capsules", "0.25g x 24", "box", "12.50", "Sinopharm", "Antibiotic", true, 120},
	{"D002", "Paracetamol Tablets", "0.5g x 20", "box", "6.80", "Baiyunshan", "Analgesic", false, 200},
	{"D003", "Ibuprofen SR Capsules", "0.3g x 20", "box", "14.90", "Yangtze River Pharma", "Analgesic", false, 150},
	{"D004", "Metformin Tablets", "0.5g x 30", "box", "9.90", "Huahai Pharma", "Endocrine", true, 90},
	{"D005", "Glimepiride Tablets", "2mg x 30", "box", "18.00", "Sanofi", "Endocrine", true, 60},
	{"D006", "Atorvastatin Tablets", "20mg x 7", "box", "26.00", "Pfizer", "Cardiovascular", true, 80},
	{"D007", "Loratadine Tablets", "10mg x 12", "box", "11.00", "Xian Janssen", "Antihistamine", false, 140},
	{"D008", "Omeprazole Capsules", "20mg x 14", "box", "19.90", "AstraZeneca", "Gastrointestinal", true, 100},
	{"D009", "Cefixime Capsules", "0.1g x 12", "box", "24.00", "Qilu Pharma", "Antibiotic", true, 70},
	{"D010", "Montmorillonite Powder", "3g x 10", "box", "15.50", "Ipsen", "Gastrointestinal", false, 110},
}

func Demo(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing demo password: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range staffTemplates {
			var existing staff.StaffProfile
			err := tx.Where("staff_no = ?", t.staffNo).First(&existing).Error
			if err == nil {
				continue
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}

			user := &domain.User{
				Email:        fmt.Sprintf("%s@demo.clinicflow.io", t.staffNo),
				PasswordHash: string(hash),
				Role:         t.role,
				IsActive:     true,
			}
			if err := tx.Create(user).Error; err != nil {
				return fmt.Errorf("creating user %s: %w", t.staffNo, err)
			}

			profile := &staff.StaffProfile{
				UserID:     user.ID,
				StaffNo:    t.staffNo,
				Name:       t.name,
				Role:       t.role,
				Department: t.department,
				Position:   t.position,
				Specialty:  t.specialty,
				IsActive:   true,
			}
			if err := tx.Create(profile).Error; err != nil {
				return fmt.Errorf("creating staff %s: %w", t.staffNo, err)
			}
			if err := tx.Model(user).Update("staff_id", profile.ID).Error; err != nil {
				return err
			}
			log.Info("seeded staff", zap.String("staff_no", t.staffNo), zap.String("role", string(t.role)))
		}

		for _, t := range drugTemplates {
			var existing pharmacy.Drug
			err := tx.Where("drug_code = ?", t.code).First(&existing).Error
			if err == nil {
				continue
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}

			price, err := decimal.NewFromString(t.salePrice)
			if err != nil {
				return fmt.Errorf("parsing price for %s: %w", t.code, err)
			}

			d := &pharmacy.Drug{
				DrugCode:             t.code,
				Name:                 t.name,
				Category:             t.category,
				Specification:        t.spec,
				Unit:                 t.unit,
				SalePrice:            price,
				PurchasePrice:        price.Mul(decimal.NewFromFloat(0.6)).Round(2),
				Manufacturer:         t.maker,
				PrescriptionRequired: t.rxRequired,
				IsActive:             true,
			}
			if err := tx.Create(d).Error; err != nil {
				return fmt.Errorf("creating drug %s: %w", t.code, err)
			}
			inv := &pharmacy.Inventory{
				DrugID:       d.ID,
				Quantity:     t.quantity,
				WarningLevel: pharmacy.DefaultWarningLevel,
				Location:     "Main Pharmacy",
			}
			if err := tx.Create(inv).Error; err != nil {
				return fmt.Errorf("creating inventory for %s: %w", t.code, err)
			}
			log.Info("seeded drug", zap.String("drug_code", t.code), zap.Int("quantity", t.quantity))
		}

		var existing patient.Patient
		err := tx.Where("patient_no = ?", "P00001").First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			p := &patient.Patient{
				PatientNo: "P00001",
				Name:      "Ava Lindgren",
				Gender:    patient.GenderFemale,
				Phone:     "13800001111",
				Address:   "12 Harbor Street",
				BloodType: "O",
			}
			if err := tx.Create(p).Error; err != nil {
				return fmt.Errorf("creating sample patient: %w", err)
			}
			log.Info("seeded patient", zap.String("patient_no", p.PatientNo))
		} else if err != nil {
			return err
		}

		return nil
	})
}
