package repository

import (
	"github.com/lshigami/Hireflow/internal/model"
	"gorm.io/gorm"
)

type MemberRepository interface {
	FindByID(id uint) (*model.Member, error)
	FindByRole(role model.MemberRole) ([]model.Member, error)
	// FindWorkflowManagers returns members allowed to manage pipelines.
	FindWorkflowManagers() ([]model.Member, error)
	WithTx(tx *gorm.DB) MemberRepository
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) WithTx(tx *gorm.DB) MemberRepository {
	return &memberRepository{db: tx}
}

func (r *memberRepository) FindByID(id uint) (*model.Member, error) {
	var member model.Member
	if err := r.db.First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) FindByRole(role model.MemberRole) ([]model.Member, error) {
	var members []model.Member
	err := r.db.Where("role = ?", role).Order("created_at ASC").Find(&members).Error
	return members, err
}

func (r *memberRepository) FindWorkflowManagers() ([]model.Member, error) {
	var members []model.Member
	err := r.db.
		Where("role IN ?", []model.MemberRole{model.MemberRoleAdmin, model.MemberRoleRecruiter}).
		Find(&members).Error
	return members, err
}
