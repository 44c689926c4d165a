// Package gmail turns recent inbox messages into per-thread snippets and
// drafts replies.
//
// The snippet pipeline runs in four steps:
//
//   - Walker lists one page of inbox messages received within N days
//     (query newer_than:Nd, label INBOX) and follows continuation tokens.
//   - Aggregator fetches each message of the page, one at a time, and
//     buckets its snippet and the full message by thread id.
//   - RenderThread renders each thread touched by the page, taking sender,
//     subject and message id from the last message recorded for it.
//   - The page is merged into the result, either replacing a thread's
//     fragments (MergeLastPageWins) or appending to them (MergeAppend).
//
// Message bodies are read with PlainTextSegments, which only decodes
// text/plain parts, or AllBodies, which decodes every part for the HTML
// rendering path.
//
// Example usage:
//
//	client, err := gmail.NewClient(ctx, metrics, option.WithHTTPClient(httpClient))
//	if err != nil {
//	    return err
//	}
//	svc := gmail.NewService(client, gmail.DefaultOptions(), logger, metrics)
//	text, err := svc.ThreadSnippets(ctx, 7)
package gmail
