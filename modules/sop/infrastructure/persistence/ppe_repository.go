package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/fieldops/sopdesk/modules/sop/domain/entities/ppe"
	"github.com/fieldops/sopdesk/modules/sop/infrastructure/persistence/models"
	"github.com/fieldops/sopdesk/pkg/composables"
)

// PPE is shared reference data without an organisation column, so these
// queries carry no tenant predicate by design of the schema, not as a bypass.
const (
	selectPpeQuery = `
		SELECT id, name, icon
		FROM ppe
		ORDER BY name`

	countPpeByIDsQuery = `SELECT COUNT(*) FROM ppe WHERE id = ANY($1)`
)

type PgPpeRepository struct{}

func NewPpeRepository() ppe.Repository {
	return &PgPpeRepository{}
}

func (r *PgPpeRepository) GetAll(ctx context.Context) ([]*ppe.Ppe, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectPpeQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query ppe")
	}
	defer rows.Close()

	items := make([]*ppe.Ppe, 0)
	for rows.Next() {
		var row models.Ppe
		if err := rows.Scan(&row.ID, &row.Name, &row.Icon); err != nil {
			return nil, errors.Wrap(err, "failed to scan ppe row")
		}
		p, err := toDomainPpe(&row)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *PgPpeRepository) ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	strIDs := make([]string, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		strIDs = append(strIDs, id.String())
	}
	var count int
	if err := tx.QueryRow(ctx, countPpeByIDsQuery, strIDs).Scan(&count); err != nil {
		return false, errors.Wrap(err, "failed to count ppe")
	}
	return count == len(strIDs), nil
}
