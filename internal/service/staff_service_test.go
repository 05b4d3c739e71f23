package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careops/clinicflow/internal/domain"
	"github.com/careops/clinicflow/internal/domain/staff"
)

func staffCreateCmd() *staff.CreateStaffCommand {
	return &staff.CreateStaffCommand{
		StaffNo:    "D100",
		Name:       "Grace Zhang",
		Role:       domain.RoleDoctor,
		Department: "Cardiology",
		LoginEmail: "Grace.Zhang@Clinic.Example ",
		Password:   "long-enough-passphrase",
	}
}

func TestStaffCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := staffActor(domain.RoleAdmin)

	profile, err := env.staffSvc.CreateStaff(ctx, admin, staffCreateCmd(), "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "D100", profile.StaffNo)
	assert.True(t, profile.IsActive)

	// Linked login identity with normalized email.
	u, err := env.users.GetByEmail(ctx, "grace.zhang@clinic.example")
	require.NoError(t, err)
	assert.Equal(t, u.ID, profile.UserID)
	assert.NotEqual(t, "long-enough-passphrase", u.PasswordHash)
}

func TestStaffCreateAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	for _, role := range []domain.Role{domain.RoleDoctor, domain.RoleNurse, domain.RolePharmacist, domain.RoleFinance} {
		_, err := env.staffSvc.CreateStaff(context.Background(), staffActor(role), staffCreateCmd(), "127.0.0.1")
		assert.ErrorIs(t, err, ErrUnauthorized, "role %s", role)
	}
}

func TestStaffCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := staffActor(domain.RoleAdmin)

	t.Run("patient role refused", func(t *testing.T) {
		cmd := staffCreateCmd()
		cmd.Role = domain.RolePatient
		_, err := env.staffSvc.CreateStaff(ctx, admin, cmd, "127.0.0.1")
		assert.ErrorIs(t, err, staff.ErrInvalidRole)
	})

	t.Run("weak password and missing fields", func(t *testing.T) {
		cmd := staffCreateCmd()
		cmd.Name = " "
		cmd.Password = "short"
		_, err := env.staffSvc.CreateStaff(ctx, admin, cmd, "127.0.0.1")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Fields, 2)
	})

	t.Run("duplicate staff number", func(t *testing.T) {
		_, err := env.staffSvc.CreateStaff(ctx, admin, staffCreateCmd(), "127.0.0.1")
		require.NoError(t, err)
		cmd := staffCreateCmd()
		cmd.LoginEmail = "second@clinic.example"
		_, err = env.staffSvc.CreateStaff(ctx, admin, cmd, "127.0.0.1")
		assert.ErrorIs(t, err, staff.ErrStaffAlreadyExists)
	})
}

func TestStaffSetActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := staffActor(domain.RoleAdmin)

	profile, err := env.staffSvc.CreateStaff(ctx, admin, staffCreateCmd(), "127.0.0.1")
	require.NoError(t, err)

	require.NoError(t, env.staffSvc.SetActive(ctx, admin, profile.ID, false, "127.0.0.1"))
	got, err := env.staffSvc.GetStaff(ctx, profile.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	t.Run("admin only", func(t *testing.T) {
		err := env.staffSvc.SetActive(ctx, staffActor(domain.RoleFinance), profile.ID, true, "127.0.0.1")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestStaffListFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := staffActor(domain.RoleAdmin)

	doctor := staffCreateCmd()
	_, err := env.staffSvc.CreateStaff(ctx, admin, doctor, "127.0.0.1")
	require.NoError(t, err)

	pharmacist := staffCreateCmd()
	pharmacist.StaffNo = "P100"
	pharmacist.Role = domain.RolePharmacist
	pharmacist.LoginEmail = "omar@clinic.example"
	_, err = env.staffSvc.CreateStaff(ctx, admin, pharmacist, "127.0.0.1")
	require.NoError(t, err)

	role := domain.RolePharmacist
	page, err := env.staffSvc.ListStaff(ctx, &staff.ListStaffQuery{Role: &role})
	require.NoError(t, err)
	require.Len(t, page.Staff, 1)
	assert.Equal(t, "P100", page.Staff[0].StaffNo)
}
