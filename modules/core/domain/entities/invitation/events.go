package invitation

// CreatedEvent carries what the invite email needs alongside the row itself,
// resolved while the inviter's identity was still on the context.
type CreatedEvent struct {
	Result           *Invitation
	OrganisationName string
	InviterName      string
}

type RevokedEvent struct {
	Result *Invitation
}
