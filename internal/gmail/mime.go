package gmail

import (
	"encoding/base64"
	"strings"

	gmailv1 "google.golang.org/api/gmail/v1"
)

// MimeTextPlain is the only MIME type the plain-text path decodes.
const MimeTextPlain = "text/plain"

// Part is a message body tree. A leaf carries a MIME type and its base64url
// payload; a container carries children only.
type Part struct {
	MimeType string
	Data     string
	Children []*Part
}

// IsContainer reports whether p has children instead of a payload.
func (p *Part) IsContainer() bool {
	return p.Children != nil
}

// NewPart converts a Gmail message part into a Part tree. A Gmail part that
// carries body data and nested parts at the same time becomes a container
// whose first child is a leaf holding that body.
func NewPart(mp *gmailv1.MessagePart) *Part {
	if mp == nil {
		return nil
	}

	data := ""
	if mp.Body != nil {
		data = mp.Body.Data
	}

	if len(mp.Parts) == 0 {
		return &Part{MimeType: mp.MimeType, Data: data}
	}

	children := make([]*Part, 0, len(mp.Parts)+1)
	if data != "" {
		children = append(children, &Part{MimeType: mp.MimeType, Data: data})
	}
	for _, sub := range mp.Parts {
		if child := NewPart(sub); child != nil {
			children = append(children, child)
		}
	}
	return &Part{MimeType: mp.MimeType, Children: children}
}

// Walk visits every leaf of p depth-first, pre-order.
func (p *Part) Walk(fn func(leaf *Part)) {
	if p == nil {
		return
	}
	if !p.IsContainer() {
		fn(p)
		return
	}
	for _, child := range p.Children {
		child.Walk(fn)
	}
}

// PlainTextSegments decodes every text/plain body in payload, parent before
// children and children in order. Other MIME types never contribute.
func PlainTextSegments(payload *gmailv1.MessagePart) []string {
	var out []string
	NewPart(payload).Walk(func(leaf *Part) {
		if leaf.MimeType == MimeTextPlain && leaf.Data != "" {
			out = append(out, DecodeBase64URL(leaf.Data))
		}
	})
	return out
}

// AllBodies decodes every body in payload regardless of MIME type, in the
// same order as PlainTextSegments. It backs the HTML rendering path.
func AllBodies(payload *gmailv1.MessagePart) []string {
	var out []string
	NewPart(payload).Walk(func(leaf *Part) {
		if leaf.Data != "" {
			out = append(out, DecodeBase64URL(leaf.Data))
		}
	})
	return out
}

// DecodeBase64URL decodes URL-safe base64 with or without '=' padding.
// Standard-alphabet input is accepted as a fallback; anything else yields "".
func DecodeBase64URL(data string) string {
	trimmed := strings.TrimRight(data, "=")
	if decoded, err := base64.RawURLEncoding.DecodeString(trimmed); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(trimmed); err == nil {
		return string(decoded)
	}
	return ""
}
