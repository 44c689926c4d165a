package gmail

import (
	"context"
	"errors"
	"net/http"

	gmailv1 "google.golang.org/api/gmail/v1"
)

// fakeMailbox serves canned pages keyed by continuation token.
type fakeMailbox struct {
	pages    map[string]*gmailv1.ListMessagesResponse
	listErr  map[string]error
	messages map[string]*gmailv1.Message
	getErr   map[string]error
	threads  map[string]*gmailv1.Thread

	profile     *gmailv1.Profile
	profileErr  error
	draftStatus int
	draftErr    error

	listCalls   []ListQuery
	getCalls    []string
	draftRaw    string
	draftThread string
}

func newFakeMailbox() *fakeMailbox {
	return &fakeMailbox{
		pages:       map[string]*gmailv1.ListMessagesResponse{},
		listErr:     map[string]error{},
		messages:    map[string]*gmailv1.Message{},
		getErr:      map[string]error{},
		threads:     map[string]*gmailv1.Thread{},
		profile:     &gmailv1.Profile{EmailAddress: "me@example.com"},
		draftStatus: http.StatusOK,
	}
}

// page registers a page served for token, listing ids and pointing at next.
func (f *fakeMailbox) page(token, next string, ids ...string) {
	res := &gmailv1.ListMessagesResponse{NextPageToken: next}
	for _, id := range ids {
		res.Messages = append(res.Messages, &gmailv1.Message{Id: id})
	}
	f.pages[token] = res
}

func (f *fakeMailbox) add(msgs ...*gmailv1.Message) {
	for _, m := range msgs {
		f.messages[m.Id] = m
	}
}

func (f *fakeMailbox) ListMessages(_ context.Context, q ListQuery) (*gmailv1.ListMessagesResponse, error) {
	f.listCalls = append(f.listCalls, q)
	if err := f.listErr[q.PageToken]; err != nil {
		return nil, err
	}
	res, ok := f.pages[q.PageToken]
	if !ok {
		return &gmailv1.ListMessagesResponse{}, nil
	}
	return res, nil
}

func (f *fakeMailbox) GetMessage(_ context.Context, id string) (*gmailv1.Message, error) {
	f.getCalls = append(f.getCalls, id)
	if err := f.getErr[id]; err != nil {
		return nil, err
	}
	m, ok := f.messages[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return m, nil
}

func (f *fakeMailbox) GetThread(_ context.Context, id string) (*gmailv1.Thread, error) {
	t, ok := f.threads[id]
	if !ok {
		return nil, errors.New("thread not found")
	}
	return t, nil
}

func (f *fakeMailbox) GetProfile(context.Context) (*gmailv1.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeMailbox) CreateDraft(_ context.Context, raw, threadID string) (int, error) {
	f.draftRaw, f.draftThread = raw, threadID
	if f.draftErr != nil {
		return 0, f.draftErr
	}
	return f.draftStatus, nil
}

// message builds a full message with From and Subject headers.
func message(id, threadID, snippet, from, subject string) *gmailv1.Message {
	return &gmailv1.Message{
		Id:       id,
		ThreadId: threadID,
		Snippet:  snippet,
		Payload: &gmailv1.MessagePart{
			MimeType: MimeTextPlain,
			Headers: []*gmailv1.MessagePartHeader{
				{Name: "From", Value: from},
				{Name: "Subject", Value: subject},
			},
			Body: &gmailv1.MessagePartBody{Data: enc("body of " + id)},
		},
	}
}

// plainFragment renders sender and body so tests can see which metadata won.
func plainFragment(meta Metadata, body string) (string, error) {
	return meta.SenderAddress + "|" + body, nil
}
