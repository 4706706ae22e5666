// Package itf provides fixtures for service-level tests. Tests run against
// in-memory repositories; the context carries a stub transaction so
// composables.InTx joins it instead of reaching for a pool.
package itf

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fieldops/sopdesk/pkg/composables"
)

// TestContext is a fluent builder for request contexts.
type TestContext struct {
	tenantID uuid.UUID
	userID   uuid.UUID
	role     string
	logger   *logrus.Entry
}

func NewTestContext() *TestContext {
	return &TestContext{
		tenantID: uuid.New(),
		userID:   uuid.New(),
		role:     "admin",
	}
}

func (tc *TestContext) WithTenantID(id uuid.UUID) *TestContext {
	tc.tenantID = id
	return tc
}

func (tc *TestContext) WithUserID(id uuid.UUID) *TestContext {
	tc.userID = id
	return tc
}

func (tc *TestContext) WithRole(role string) *TestContext {
	tc.role = role
	return tc
}

// WithLogger replaces the default discard logger, letting tests hook log
// output.
func (tc *TestContext) WithLogger(entry *logrus.Entry) *TestContext {
	tc.logger = entry
	return tc
}

// Build assembles the context an authenticated request would carry.
func (tc *TestContext) Build(tb testing.TB) *TestEnvironment {
	tb.Helper()

	logger := tc.logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = logrus.NewEntry(l)
	}

	ctx := context.Background()
	ctx = composables.WithTx(ctx, &stubTx{tb: tb})
	ctx = composables.WithLogger(ctx, logger)
	ctx = composables.WithTenantID(ctx, tc.tenantID)
	ctx = composables.WithUserID(ctx, tc.userID)
	ctx = composables.WithUserRole(ctx, tc.role)

	return &TestEnvironment{
		Ctx:      ctx,
		TenantID: tc.tenantID,
		UserID:   tc.userID,
		Role:     tc.role,
	}
}

type TestEnvironment struct {
	Ctx      context.Context
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     string
}

// AsUser returns the environment's context rebound to another identity.
// Useful for tenant isolation and role checks within a single test.
func (te *TestEnvironment) AsUser(userID uuid.UUID, role string) context.Context {
	ctx := composables.WithUserID(te.Ctx, userID)
	return composables.WithUserRole(ctx, role)
}

// AsTenant returns the environment's context rebound to another organisation.
func (te *TestEnvironment) AsTenant(tenantID uuid.UUID) context.Context {
	return composables.WithTenantID(te.Ctx, tenantID)
}
