package google

import gmailv1 "google.golang.org/api/gmail/v1"

// Scopes are the OAuth scopes the server requests: reading mail and
// composing drafts. Changing them invalidates saved tokens.
var Scopes = []string{
	gmailv1.GmailReadonlyScope,
	gmailv1.GmailComposeScope,
}
