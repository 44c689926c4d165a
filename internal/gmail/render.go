package gmail

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/microcosm-cc/bluemonday"
	gmailv1 "google.golang.org/api/gmail/v1"
)

// DraftToolName is the tool a rendered reply form calls back into.
const DraftToolName = "gmail-draft-response"

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateFuncs = map[string]any{
	"json": toJSON,
}

var (
	textSnippetTmpl = texttemplate.Must(texttemplate.New("snippet.txt.tmpl").Funcs(map[string]any{"json": toPlainJSON}).ParseFS(templateFS, "templates/snippet.txt.tmpl"))
	threadCardTmpl  = texttemplate.Must(texttemplate.New("thread-card.js.tmpl").Funcs(templateFuncs).ParseFS(templateFS, "templates/thread-card.js.tmpl"))
	htmlSnippetTmpl = htmltemplate.Must(htmltemplate.New("snippet.html.tmpl").Funcs(templateFuncs).ParseFS(templateFS, "templates/snippet.html.tmpl"))
	threadHTMLTmpl  = htmltemplate.Must(htmltemplate.New("thread.html.tmpl").ParseFS(templateFS, "templates/thread.html.tmpl"))
)

var htmlPolicy = bluemonday.UGCPolicy()

// Metadata identifies the message a reply is drafted against. The JSON
// names are read by the UI host and by the draft tool's input schema.
type Metadata struct {
	SenderAddress string `json:"senderAddress"`
	Subject       string `json:"subject"`
	ThreadID      string `json:"threadId"`
	MessageID     string `json:"messageId"`
}

// ThreadMetadata derives metadata from the last message in messages.
// Headers are matched by case-sensitive prefix, first match wins.
func ThreadMetadata(threadID string, messages []*gmailv1.Message) Metadata {
	meta := Metadata{ThreadID: threadID}
	if len(messages) == 0 || messages[len(messages)-1] == nil {
		return meta
	}
	last := messages[len(messages)-1]
	meta.MessageID = last.Id
	if last.Payload != nil {
		meta.SenderAddress = headerWithPrefix(last.Payload.Headers, "From")
		meta.Subject = headerWithPrefix(last.Payload.Headers, "Subject")
	}
	return meta
}

func headerWithPrefix(headers []*gmailv1.MessagePartHeader, prefix string) string {
	for _, h := range headers {
		if h != nil && strings.HasPrefix(h.Name, prefix) {
			return h.Value
		}
	}
	return ""
}

// Format selects the shape of a rendered snippet.
type Format string

const (
	FormatText      Format = "text"
	FormatHTML      Format = "html"
	FormatRemoteDOM Format = "remote-dom"
)

// ParseFormat validates a format name. Empty means FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatHTML, FormatRemoteDOM:
		return Format(s), nil
	default:
		return "", fmt.Errorf("invalid format %q, must be one of: text, html, remote-dom", s)
	}
}

// Fragment renders one body with its thread metadata.
type Fragment func(meta Metadata, body string) (string, error)

// FragmentFor returns the renderer for format.
func FragmentFor(format Format) (Fragment, error) {
	switch format {
	case FormatText:
		return TextFragment, nil
	case FormatHTML:
		return HTMLFragment, nil
	case FormatRemoteDOM:
		return RemoteDOMFragment, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// RenderThread renders every non-empty segment of a thread. Metadata comes
// from the last of messages.
func RenderThread(frag Fragment, threadID string, segments []string, messages []*gmailv1.Message) ([]string, error) {
	meta := ThreadMetadata(threadID, messages)
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		s, err := frag(meta, seg)
		if err != nil {
			return nil, fmt.Errorf("failed to render thread %s: %w", threadID, err)
		}
		out = append(out, s)
	}
	return out, nil
}

type snippetData struct {
	Meta     Metadata
	Body     string
	ToolName string
}

// TextFragment renders a delimited plain-text block with a JSON metadata line.
func TextFragment(meta Metadata, body string) (string, error) {
	var buf bytes.Buffer
	if err := textSnippetTmpl.Execute(&buf, snippetData{Meta: meta, Body: body}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// HTMLFragment renders the body with a reply form that posts a draft tool
// call to the host frame. Every value goes through contextual escaping.
func HTMLFragment(meta Metadata, body string) (string, error) {
	var buf bytes.Buffer
	if err := htmlSnippetTmpl.Execute(&buf, snippetData{Meta: meta, Body: body, ToolName: DraftToolName}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type threadCardData struct {
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	MessageID     string `json:"messageId"`
	ThreadID      string `json:"threadId"`
	SenderAddress string `json:"senderAddress"`
}

// RemoteDOMFragment renders the thread card script with its data bound as
// a JSON literal.
func RemoteDOMFragment(meta Metadata, body string) (string, error) {
	var buf bytes.Buffer
	err := threadCardTmpl.Execute(&buf, threadCardData{
		Subject:       meta.Subject,
		Body:          body,
		MessageID:     meta.MessageID,
		ThreadID:      meta.ThreadID,
		SenderAddress: meta.SenderAddress,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ThreadHTML renders decoded bodies as one HTML document. Bodies are
// sanitized before they are trusted as markup.
func ThreadHTML(bodies []string) (string, error) {
	safe := make([]htmltemplate.HTML, 0, len(bodies))
	for _, b := range bodies {
		if b == "" {
			continue
		}
		safe = append(safe, htmltemplate.HTML(htmlPolicy.Sanitize(b)))
	}
	var buf bytes.Buffer
	if err := threadHTMLTmpl.Execute(&buf, struct{ Bodies []htmltemplate.HTML }{safe}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// toJSON marshals v for embedding in a template. The encoder escapes <, >
// and & so the output is safe inside script text.
func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// toPlainJSON marshals v without HTML escaping, for plain-text output.
func toPlainJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
