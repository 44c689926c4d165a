// Package gmail_tools provides the MCP tools that read Gmail threads and
// draft replies:
//
//   - gmail-thread-snippets: text snippets of inbox threads from the last N days
//   - gmail-thread-snippets-ui: the same snippets as HTML or remote-dom UI resources
//   - gmail-thread-full: every text/plain body of one thread
//   - gmail-thread-full-ui: every body of one thread as an HTML resource
//   - gmail-draft-response: a reply draft in an existing thread
//
// All tools share the lazily authorized Gmail service on the server
// context. Without a saved token they answer with the gmail-auth hint.
package gmail_tools
