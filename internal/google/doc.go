// Package google authorizes Gmail API access for a single mailbox.
//
// Authorization reads a saved authorized_user token file (TOKEN_PATH). When
// none exists and the caller is interactive, a loopback browser flow is run
// with the OAuth client credentials file (CREDENTIALS_PATH) and the result
// is saved for next time. Otherwise ErrNotAuthorized is returned and callers
// show AuthHint to the user.
package google
