package sop

// Workflow events are published strictly after the owning transaction has
// committed. Recipient addresses are resolved while the request identity is
// still on the context, so handlers need no database access.

type VersionSubmittedEvent struct {
	Result      *Version
	Reference   string
	AuthorName  string
	AdminEmails []string
}

type VersionApprovedEvent struct {
	Result       *Version
	Reference    string
	ApproverName string
	AuthorEmail  string
}

type VersionRejectedEvent struct {
	Result       *Version
	Reference    string
	ApproverName string
	AuthorEmail  string
}
