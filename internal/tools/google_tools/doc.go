// Package google_tools provides the gmail-auth MCP tool, which bootstraps
// Gmail OAuth for the server.
//
// The flow:
//  1. If a token file is already saved, the tool reports that Gmail is authorized.
//  2. Otherwise it starts a loopback browser flow using the OAuth client
//     credentials file and returns the consent URL.
//  3. The user opens the URL and grants access; the token is saved in the
//     background and every Gmail tool picks it up on its next call.
//  4. Without a credentials file the tool returns a hint explaining the setup.
package google_tools
