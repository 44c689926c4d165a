package gmail

import (
	"context"
	"fmt"
	"strings"

	gmailv1 "google.golang.org/api/gmail/v1"
	"golang.org/x/time/rate"

	"github.com/mtanzim/mcptools/internal/instrumentation"
	"github.com/mtanzim/mcptools/internal/logging"
)

// FragmentSeparator joins rendered fragments in a single text result.
const FragmentSeparator = "\n\n\n"

// Options tunes the snippet pipeline.
type Options struct {
	// PageSize is the list page size for text snippets.
	PageSize int64
	// UIPageSize is the list page size for UI snippets.
	UIPageSize int64
	// UIPagination walks past the first page for UI snippets.
	UIPagination bool

	Merge      MergeMode
	BodySource BodySource

	// FetchQPS paces message fetches. Zero or less means unpaced.
	FetchQPS float64

	MaxPages int
}

// DefaultOptions returns the pipeline defaults.
func DefaultOptions() Options {
	return Options{
		PageSize:   25,
		UIPageSize: 3,
		Merge:      MergeLastPageWins,
		BodySource: BodySnippet,
	}
}

// Mailbox is the Gmail surface the service uses. *Client implements it.
type Mailbox interface {
	MessageLister
	MessageGetter
	DraftCreator
	GetThread(ctx context.Context, id string) (*gmailv1.Thread, error)
}

// Service runs the thread snippet pipeline and the draft composer against
// one authenticated mailbox.
type Service struct {
	mailbox Mailbox
	opts    Options
	logger  logging.Logger
	metrics *instrumentation.Metrics
}

// NewService creates a Service.
func NewService(mailbox Mailbox, opts Options, logger logging.Logger, metrics *instrumentation.Metrics) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{mailbox: mailbox, opts: opts, logger: logger, metrics: metrics}
}

func (s *Service) walker() *Walker {
	var limiter *rate.Limiter
	if s.opts.FetchQPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.opts.FetchQPS), 1)
	}
	agg := NewAggregator(s.mailbox, AggregatorOptions{
		BodySource: s.opts.BodySource,
		Limiter:    limiter,
		Logger:     s.logger,
		Metrics:    s.metrics,
	})
	return NewWalker(s.mailbox, agg, s.logger, s.metrics)
}

// ThreadSnippets renders the inbox threads of the last days days as text
// blocks joined by FragmentSeparator.
func (s *Service) ThreadSnippets(ctx context.Context, days int) (string, error) {
	fragments, err := s.ThreadSnippetFragments(ctx, days, FormatText)
	if err != nil {
		return "", err
	}
	return strings.Join(fragments, FragmentSeparator), nil
}

// ThreadSnippetFragments renders the inbox threads of the last days days
// in format, one fragment per snippet.
func (s *Service) ThreadSnippetFragments(ctx context.Context, days int, format Format) ([]string, error) {
	frag, err := FragmentFor(format)
	if err != nil {
		return nil, err
	}

	opts := WalkOptions{
		Days:     days,
		PageSize: s.opts.PageSize,
		Merge:    s.opts.Merge,
		MaxPages: s.opts.MaxPages,
	}
	if format != FormatText {
		opts.PageSize = s.opts.UIPageSize
		opts.DisablePagination = !s.opts.UIPagination
	}

	set, err := s.walker().Walk(ctx, opts, frag)
	if err != nil {
		return nil, err
	}
	return set.Flatten(), nil
}

// ThreadText returns the decoded text/plain bodies of every message in a
// thread, separated by blank lines.
func (s *Service) ThreadText(ctx context.Context, threadID string) (string, error) {
	thread, err := s.mailbox.GetThread(ctx, threadID)
	if err != nil {
		return "", err
	}
	s.logger.Debug("fetched thread", logging.Operation("thread.text"), logging.Thread(threadID), "messages", len(thread.Messages))
	var bodies []string
	for _, m := range thread.Messages {
		if m == nil {
			continue
		}
		for _, seg := range PlainTextSegments(m.Payload) {
			if seg != "" {
				bodies = append(bodies, seg)
			}
		}
	}
	return strings.Join(bodies, "\n\n"), nil
}

// ThreadHTML returns every decoded body of a thread, of any MIME type,
// as sanitized HTML.
func (s *Service) ThreadHTML(ctx context.Context, threadID string) (string, error) {
	thread, err := s.mailbox.GetThread(ctx, threadID)
	if err != nil {
		return "", err
	}
	s.logger.Debug("fetched thread", logging.Operation("thread.html"), logging.Thread(threadID), "messages", len(thread.Messages))
	var bodies []string
	for _, m := range thread.Messages {
		if m == nil {
			continue
		}
		bodies = append(bodies, AllBodies(m.Payload)...)
	}
	html, err := ThreadHTML(bodies)
	if err != nil {
		return "", fmt.Errorf("failed to render thread %s: %w", threadID, err)
	}
	return html, nil
}

// DraftReply creates a reply draft. See CreateDraftReply.
func (s *Service) DraftReply(ctx context.Context, req DraftRequest) (string, error) {
	result, err := CreateDraftReply(ctx, s.mailbox, req)
	s.logger.Debug("draft reply", logging.Operation("draft.create"), logging.Thread(req.ThreadID), logging.Err(err))
	return result, err
}

// Profile returns the authenticated mailbox profile.
func (s *Service) Profile(ctx context.Context) (*gmailv1.Profile, error) {
	return s.mailbox.GetProfile(ctx)
}
