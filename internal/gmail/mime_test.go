package gmail

import (
	"encoding/base64"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	gmailv1 "google.golang.org/api/gmail/v1"
)

func enc(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func leaf(mime, text string) *gmailv1.MessagePart {
	return &gmailv1.MessagePart{MimeType: mime, Body: &gmailv1.MessagePartBody{Data: enc(text)}}
}

func TestDecodeBase64URL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "unpadded", input: base64.RawURLEncoding.EncodeToString([]byte("hi?>")), want: "hi?>"},
		{name: "padded", input: base64.URLEncoding.EncodeToString([]byte("hi?>")), want: "hi?>"},
		{name: "standard alphabet", input: base64.StdEncoding.EncodeToString([]byte("??>>")), want: "??>>"},
		{name: "utf-8", input: enc("héllo wörld"), want: "héllo wörld"},
		{name: "empty", input: "", want: ""},
		{name: "garbage", input: "!!!*", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeBase64URL(tt.input))
		})
	}
}

func TestDecodeBase64URL_RoundTrip(t *testing.T) {
	for _, s := range []string{"a", "ab", "abc", "abcd", "line one\r\nline two", "subjects ~~~ ???"} {
		assert.Equal(t, s, DecodeBase64URL(enc(s)), s)
	}
}

func TestNewPart_BodyAndChildren(t *testing.T) {
	root := &gmailv1.MessagePart{
		MimeType: "multipart/mixed",
		Body:     &gmailv1.MessagePartBody{Data: enc("root")},
		Parts:    []*gmailv1.MessagePart{leaf(MimeTextPlain, "child")},
	}

	p := NewPart(root)

	assert.True(t, p.IsContainer())
	if assert.Len(t, p.Children, 2) {
		assert.False(t, p.Children[0].IsContainer())
		assert.Equal(t, "multipart/mixed", p.Children[0].MimeType)
		assert.Equal(t, MimeTextPlain, p.Children[1].MimeType)
	}
	assert.Nil(t, NewPart(nil))
}

func TestPlainTextSegments_PreOrder(t *testing.T) {
	payload := &gmailv1.MessagePart{
		MimeType: MimeTextPlain,
		Body:     &gmailv1.MessagePartBody{Data: enc("root")},
		Parts: []*gmailv1.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmailv1.MessagePart{
					leaf(MimeTextPlain, "first"),
					leaf("text/html", "<b>first</b>"),
				},
			},
			leaf(MimeTextPlain, "second"),
			{MimeType: "application/pdf", Body: &gmailv1.MessagePartBody{AttachmentId: "att-1"}},
		},
	}

	got := PlainTextSegments(payload)

	if diff := cmp.Diff([]string{"root", "first", "second"}, got); diff != "" {
		t.Errorf("PlainTextSegments() mismatch (-want +got):\n%s", diff)
	}
}

func TestPlainTextSegments_SkipsNonPlain(t *testing.T) {
	payload := &gmailv1.MessagePart{
		MimeType: "multipart/alternative",
		Parts:    []*gmailv1.MessagePart{leaf("text/html", "<p>x</p>")},
	}
	assert.Empty(t, PlainTextSegments(payload))
	assert.Empty(t, PlainTextSegments(nil))
	assert.Empty(t, PlainTextSegments(&gmailv1.MessagePart{MimeType: MimeTextPlain}))
}

func TestAllBodies(t *testing.T) {
	payload := &gmailv1.MessagePart{
		MimeType: "multipart/alternative",
		Body:     &gmailv1.MessagePartBody{Data: enc("preamble")},
		Parts: []*gmailv1.MessagePart{
			leaf(MimeTextPlain, "plain"),
			leaf("text/html", "<p>html</p>"),
		},
	}

	got := AllBodies(payload)

	if diff := cmp.Diff([]string{"preamble", "plain", "<p>html</p>"}, got); diff != "" {
		t.Errorf("AllBodies() mismatch (-want +got):\n%s", diff)
	}
}

func TestPart_Walk(t *testing.T) {
	p := &Part{Children: []*Part{
		{MimeType: "a"},
		{Children: []*Part{{MimeType: "b"}, {MimeType: "c"}}},
		{MimeType: "d"},
	}}

	var seen []string
	p.Walk(func(l *Part) { seen = append(seen, l.MimeType) })

	assert.Equal(t, []string{"a", "b", "c", "d"}, seen)
}
