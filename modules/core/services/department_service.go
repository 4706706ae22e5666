package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/fieldops/sopdesk/modules/core/domain/entities/department"
	"github.com/fieldops/sopdesk/pkg/composables"
)

type DepartmentService struct {
	repo department.Repository
}

func NewDepartmentService(repo department.Repository) *DepartmentService {
	return &DepartmentService{repo: repo}
}

func (s *DepartmentService) GetByID(ctx context.Context, id uuid.UUID) (*department.Department, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DepartmentService) GetAll(ctx context.Context) ([]*department.Department, error) {
	return s.repo.GetAll(ctx)
}

func (s *DepartmentService) Create(ctx context.Context, name string) (*department.Department, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	d := department.New(name, tenantID)
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, d)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DepartmentService) Rename(ctx context.Context, id uuid.UUID, name string) (*department.Department, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*department.Department, error) {
		d, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		d.Rename(name)
		if err := s.repo.Update(txCtx, d); err != nil {
			return nil, err
		}
		return d, nil
	})
}

func (s *DepartmentService) Delete(ctx context.Context, id uuid.UUID) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
}
