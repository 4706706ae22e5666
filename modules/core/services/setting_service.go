package services

import (
	"context"

	"github.com/fieldops/sopdesk/modules/core/domain/entities/setting"
)

type SettingService struct {
	repo setting.Repository
}

func NewSettingService(repo setting.Repository) *SettingService {
	return &SettingService{repo: repo}
}

func (s *SettingService) Get(ctx context.Context, key string) (*setting.Setting, error) {
	return s.repo.Get(ctx, key)
}
