package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/fieldops/sopdesk/modules/core/domain/entities/setting"
	"github.com/fieldops/sopdesk/pkg/composables"
	"github.com/fieldops/sopdesk/pkg/serrors"
)

var ErrSettingNotFound = serrors.NotFound("SETTING_NOT_FOUND", "setting not found")

// Tenant override wins over the global default with the same key.
const selectSettingQuery = `
	SELECT key, value
	FROM settings
	WHERE key = $1 AND (organisation_id = $2 OR organisation_id IS NULL)
	ORDER BY organisation_id NULLS LAST
	LIMIT 1`

type PgSettingRepository struct{}

func NewSettingRepository() setting.Repository {
	return &PgSettingRepository{}
}

func (r *PgSettingRepository) Get(ctx context.Context, key string) (*setting.Setting, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var s setting.Setting
	if err := tx.QueryRow(ctx, selectSettingQuery, key, tenantID.String()).Scan(&s.Key, &s.Value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingNotFound
		}
		return nil, errors.Wrap(err, "failed to query setting")
	}
	return &s, nil
}
