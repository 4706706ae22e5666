package services

import (
	"context"

	"github.com/fieldops/sopdesk/modules/sop/domain/entities/ppe"
)

type PpeService struct {
	repo ppe.Repository
}

func NewPpeService(repo ppe.Repository) *PpeService {
	return &PpeService{repo: repo}
}

func (s *PpeService) GetAll(ctx context.Context) ([]*ppe.Ppe, error) {
	return s.repo.GetAll(ctx)
}
