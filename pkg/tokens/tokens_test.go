package tokens_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/sopdesk/pkg/serrors"
	"github.com/fieldops/sopdesk/pkg/tokens"
)

func newIssuer(accessTTL, inviteTTL time.Duration) *tokens.Issuer {
	return tokens.NewIssuer("test-secret", "sopdesk", "sopdesk-api", accessTTL, inviteTTL)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	issuer := newIssuer(time.Hour, time.Hour)
	userID := uuid.New()
	orgID := uuid.New()

	raw, err := issuer.IssueAccess(userID, orgID, "jo@acme.test", "admin", "Jo", "Bloggs")
	require.NoError(t, err)

	claims, err := issuer.ValidateAccess(raw)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, orgID, claims.OrganisationID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "jo@acme.test", claims.Subject)
	assert.Equal(t, "Jo", claims.Forename)
	assert.Equal(t, "Bloggs", claims.Surname)
}

func TestAccessToken_Expired(t *testing.T) {
	issuer := newIssuer(-time.Minute, time.Hour)

	raw, err := issuer.IssueAccess(uuid.New(), uuid.New(), "jo@acme.test", "user", "Jo", "Bloggs")
	require.NoError(t, err)

	_, err = issuer.ValidateAccess(raw)
	require.Error(t, err)
	assert.Equal(t, serrors.KindUnauthorized, serrors.KindOf(err))
}

func TestAccessToken_WrongSecretRejected(t *testing.T) {
	issuer := newIssuer(time.Hour, time.Hour)
	other := tokens.NewIssuer("other-secret", "sopdesk", "sopdesk-api", time.Hour, time.Hour)

	raw, err := other.IssueAccess(uuid.New(), uuid.New(), "jo@acme.test", "user", "Jo", "Bloggs")
	require.NoError(t, err)

	_, err = issuer.ValidateAccess(raw)
	require.Error(t, err)
}

func TestAccessToken_WrongAudienceRejected(t *testing.T) {
	issuer := newIssuer(time.Hour, time.Hour)
	other := tokens.NewIssuer("test-secret", "sopdesk", "another-api", time.Hour, time.Hour)

	raw, err := other.IssueAccess(uuid.New(), uuid.New(), "jo@acme.test", "user", "Jo", "Bloggs")
	require.NoError(t, err)

	_, err = issuer.ValidateAccess(raw)
	require.Error(t, err)
}

func TestInvitationToken_RoundTrip(t *testing.T) {
	issuer := newIssuer(time.Hour, time.Hour)
	orgID := uuid.New()

	raw, err := issuer.IssueInvitation("new@acme.test", "user", orgID)
	require.NoError(t, err)

	claims, err := issuer.ValidateInvitation(raw)
	require.NoError(t, err)
	assert.Equal(t, "new@acme.test", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, orgID, claims.OrganisationID)
}

func TestInvitationToken_NotValidAsGarbage(t *testing.T) {
	issuer := newIssuer(time.Hour, time.Hour)
	_, err := issuer.ValidateInvitation("not-a-token")
	require.Error(t, err)
	assert.Equal(t, serrors.KindUnauthorized, serrors.KindOf(err))
}
