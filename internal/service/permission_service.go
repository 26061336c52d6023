package service

import (
	"errors"

	"github.com/lshigami/Hireflow/internal/apperr"
	"github.com/lshigami/Hireflow/internal/model"
	"github.com/lshigami/Hireflow/internal/repository"
	"gorm.io/gorm"
)

// PermissionService resolves whether a member holds a named capability. A
// negative answer becomes an Unauthorized failure before any state mutation.
type PermissionService interface {
	Require(memberID uint, capability string) error
}

type permissionService struct {
	memberRepo repository.MemberRepository
}

func NewPermissionService(memberRepo repository.MemberRepository) PermissionService {
	return &permissionService{memberRepo: memberRepo}
}

func (s *permissionService) Require(memberID uint, capability string) error {
	member, err := s.memberRepo.FindByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.CodeUnauthorized, "unknown member", err)
		}
		return err
	}
	if !roleHolds(member.Role, capability) {
		return apperr.New(apperr.CodeUnauthorized, "missing capability "+capability, nil)
	}
	return nil
}

func roleHolds(role model.MemberRole, capability string) bool {
	switch capability {
	case model.CapabilityManagePipeline:
		return role == model.MemberRoleAdmin || role == model.MemberRoleRecruiter
	case model.CapabilityGradeReview:
		return role == model.MemberRoleAdmin || role == model.MemberRoleHiringManager
	default:
		return role == model.MemberRoleAdmin
	}
}
