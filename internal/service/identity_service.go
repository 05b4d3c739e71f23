package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/careops/clinicflow/internal/domain"
	"github.com/careops/clinicflow/internal/domain/staff"
)

// IdentityService is the role registry: it resolves an authenticated
// caller's claims to a closed Actor variant exactly once per request. The
// authorization gate then matches on the variant instead of probing for
// profile attributes.
type IdentityService struct {
	staffRepo staff.Repository
	log       *zap.Logger
}

func NewIdentityService(staffRepo staff.Repository, log *zap.Logger) *IdentityService {
	return &IdentityService{staffRepo: staffRepo, log: log}
}

// Resolve maps claims to an Actor. A claims set pointing at a staff profile
// resolves to Staff with the profile's current role and active flag (the
// database is consulted so a deactivation takes effect immediately, not at
// token expiry). A claims set pointing at a patient resolves to Patient.
// Anything else resolves to Unknown.
func (s *IdentityService) Resolve(ctx context.Context, claims *domain.Claims) (domain.Actor, error) {
	if claims == nil {
		return domain.Actor{Kind: domain.ActorUnknown}, nil
	}

	if claims.StaffID != nil {
		profile, err := s.staffRepo.GetByID(ctx, *claims.StaffID)
		if err != nil {
			s.log.Warn("claims reference a missing staff profile",
				zap.String("user_id", claims.UserID.String()),
				zap.String("staff_id", claims.StaffID.String()),
			)
			return domain.Actor{Kind: domain.ActorUnknown}, fmt.Errorf("resolving staff profile: %w", err)
		}
		return domain.Actor{
			Kind:        domain.ActorStaff,
			UserID:      claims.UserID,
			StaffID:     profile.ID,
			StaffNo:     profile.StaffNo,
			Role:        profile.Role,
			StaffActive: profile.IsActive,
		}, nil
	}

	if claims.PatientID != nil {
		return domain.Actor{
			Kind:      domain.ActorPatient,
			UserID:    claims.UserID,
			PatientID: *claims.PatientID,
		}, nil
	}

	return domain.Actor{Kind: domain.ActorUnknown, UserID: claims.UserID}, nil
}
