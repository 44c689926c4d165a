package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/mtanzim/mcptools/internal/instrumentation"
)

const (
	userID      = "me"
	labelInbox  = "INBOX"
	formatFull  = "full"
	maxPageSize = 500
)

// ErrUnexpectedStatus is returned when Gmail answers with a status other than 200.
var ErrUnexpectedStatus = errors.New("unexpected gmail response status")

// ListQuery selects one page of inbox messages received within Days days.
type ListQuery struct {
	Days      int
	PageSize  int64
	PageToken string
}

// Q renders the Gmail search expression for the query.
func (q ListQuery) Q() string {
	return fmt.Sprintf("newer_than:%dd", q.Days)
}

// MessageLister lists message stubs.
type MessageLister interface {
	ListMessages(ctx context.Context, q ListQuery) (*gmailv1.ListMessagesResponse, error)
}

// MessageGetter fetches one full message.
type MessageGetter interface {
	GetMessage(ctx context.Context, id string) (*gmailv1.Message, error)
}

// Client wraps the Gmail Users service for the authenticated user.
type Client struct {
	svc     *gmailv1.UsersService
	metrics *instrumentation.Metrics
}

// NewClient creates a Gmail client. Pass option.WithHTTPClient with an
// authorized client, and option.WithEndpoint to target a fake in tests.
func NewClient(ctx context.Context, metrics *instrumentation.Metrics, opts ...option.ClientOption) (*Client, error) {
	svc, err := gmailv1.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &Client{svc: svc.Users, metrics: metrics}, nil
}

// ListMessages returns one page of inbox message stubs.
func (c *Client) ListMessages(ctx context.Context, q ListQuery) (res *gmailv1.ListMessagesResponse, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationList, attribute.Int(instrumentation.SpanAttrDays, q.Days))
	defer func() { done(err) }()

	call := c.svc.Messages.List(userID).Q(q.Q()).LabelIds(labelInbox).Context(ctx)
	if q.PageSize > 0 {
		call = call.MaxResults(min(q.PageSize, maxPageSize))
	}
	if q.PageToken != "" {
		call = call.PageToken(q.PageToken)
	}

	res, err = call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return res, nil
}

// GetMessage fetches a message in full format.
func (c *Client) GetMessage(ctx context.Context, id string) (msg *gmailv1.Message, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationGet)
	defer func() { done(err) }()

	msg, err = c.svc.Messages.Get(userID, id).Format(formatFull).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	if msg.HTTPStatusCode != http.StatusOK {
		return nil, fmt.Errorf("message %s: %w: %d", id, ErrUnexpectedStatus, msg.HTTPStatusCode)
	}
	return msg, nil
}

// GetThread fetches a thread with every message in full format.
func (c *Client) GetThread(ctx context.Context, id string) (thread *gmailv1.Thread, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationThread, attribute.String(instrumentation.SpanAttrThreadID, id))
	defer func() { done(err) }()

	thread, err = c.svc.Threads.Get(userID, id).Format(formatFull).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get thread %s: %w", id, err)
	}
	return thread, nil
}

// GetProfile returns the authenticated mailbox profile.
func (c *Client) GetProfile(ctx context.Context) (profile *gmailv1.Profile, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationProfile)
	defer func() { done(err) }()

	profile, err = c.svc.GetProfile(userID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// CreateDraft stores raw as a draft in threadID and returns the HTTP status.
// An API error response is reported through the status, not the error;
// only transport failures return an error.
func (c *Client) CreateDraft(ctx context.Context, raw, threadID string) (status int, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationDraft, attribute.String(instrumentation.SpanAttrThreadID, threadID))
	defer func() {
		if err == nil && status != http.StatusOK {
			done(fmt.Errorf("%w: %d", ErrUnexpectedStatus, status))
			return
		}
		done(err)
	}()

	draft, err := c.svc.Drafts.Create(userID, &gmailv1.Draft{
		Message: &gmailv1.Message{Raw: raw, ThreadId: threadID},
	}).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return apiErr.Code, nil
		}
		return 0, fmt.Errorf("failed to create draft: %w", err)
	}
	return draft.HTTPStatusCode, nil
}

// observe opens an upstream span and returns a func that ends it and
// records the operation metric.
func (c *Client) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := instrumentation.StartUpstreamSpan(ctx, instrumentation.ServiceGmail, op, attrs...)
	return ctx, func(err error) {
		instrumentation.EndSpan(span, err)
		c.metrics.RecordUpstreamOperation(ctx, instrumentation.ServiceGmail, op, instrumentation.StatusFor(err), time.Since(start))
	}
}
