package mailer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/sopdesk/pkg/mailer"
)

func TestRenderer_RendersInvitation(t *testing.T) {
	r := mailer.NewRenderer()
	html, err := r.Render("invitation.html", map[string]string{
		"OrganisationName": "Acme",
		"InviterName":      "Jo Bloggs",
		"Role":             "user",
		"AcceptURL":        "https://sopdesk.local/accept?token=abc",
		"ExpiresAt":        "2026-01-01",
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(html, "Acme"))
	assert.True(t, strings.Contains(html, "Accept invitation"))
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	r := mailer.NewRenderer()
	_, err := r.Render("nope.html", nil)
	require.Error(t, err)
}

func TestRenderer_EscapesModel(t *testing.T) {
	r := mailer.NewRenderer()
	html, err := r.Render("sop_submitted.html", map[string]any{
		"AuthorName": "<script>alert(1)</script>",
		"Title":      "Lockout",
		"Reference":  "SOP-1",
		"Version":    1,
	})
	require.NoError(t, err)
	assert.False(t, strings.Contains(html, "<script>"))
}
