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

// ThreadSet maps thread ids to text segments and full messages. Ids keep
// the order in which they were first added.
type ThreadSet struct {
	order    []string
	segments map[string][]string
	messages map[string][]*gmailv1.Message
}

// NewThreadSet returns an empty set.
func NewThreadSet() *ThreadSet {
	return &ThreadSet{
		segments: make(map[string][]string),
		messages: make(map[string][]*gmailv1.Message),
	}
}

func (s *ThreadSet) touch(id string) {
	if _, ok := s.segments[id]; ok {
		return
	}
	s.order = append(s.order, id)
	s.segments[id] = nil
}

// IDs returns the thread ids in first-insertion order.
func (s *ThreadSet) IDs() []string {
	return append([]string(nil), s.order...)
}

func (s *ThreadSet) Len() int { return len(s.order) }

func (s *ThreadSet) Segments(id string) []string { return s.segments[id] }

func (s *ThreadSet) Messages(id string) []*gmailv1.Message { return s.messages[id] }

// Add appends one segment and its message to thread id.
func (s *ThreadSet) Add(id, segment string, msg *gmailv1.Message) {
	s.touch(id)
	s.segments[id] = append(s.segments[id], segment)
	s.messages[id] = append(s.messages[id], msg)
}

// SetSegments replaces the segments of thread id.
func (s *ThreadSet) SetSegments(id string, segments []string) {
	s.touch(id)
	s.segments[id] = segments
}

// AppendSegments adds segments after the existing ones of thread id.
func (s *ThreadSet) AppendSegments(id string, segments []string) {
	s.touch(id)
	s.segments[id] = append(s.segments[id], segments...)
}

// AddMessages appends msgs to the message history of thread id.
func (s *ThreadSet) AddMessages(id string, msgs []*gmailv1.Message) {
	s.touch(id)
	s.messages[id] = append(s.messages[id], msgs...)
}

// Flatten returns every segment, thread by thread.
func (s *ThreadSet) Flatten() []string {
	var out []string
	for _, id := range s.order {
		out = append(out, s.segments[id]...)
	}
	return out
}

// BodySource selects the text the aggregator records per message.
type BodySource string

const (
	// BodySnippet records the preview text Gmail returns with the message.
	BodySnippet BodySource = "snippet"
	// BodyPlainText records the decoded text/plain parts of the message.
	BodyPlainText BodySource = "plaintext"
)

// ParseBodySource validates a body source name. Empty means BodySnippet.
func ParseBodySource(s string) (BodySource, error) {
	switch BodySource(s) {
	case "", BodySnippet:
		return BodySnippet, nil
	case BodyPlainText:
		return BodyPlainText, nil
	default:
		return "", fmt.Errorf("invalid body source %q, must be one of: snippet, plaintext", s)
	}
}

// AggregatorOptions configures an Aggregator.
type AggregatorOptions struct {
	BodySource BodySource

	// Limiter paces message fetches. Nil means unpaced.
	Limiter *rate.Limiter

	Logger  logging.Logger
	Metrics *instrumentation.Metrics
}

// Aggregator groups a page of message stubs by thread. Messages are fetched
// one at a time and never concurrently.
type Aggregator struct {
	getter  MessageGetter
	source  BodySource
	limiter *rate.Limiter
	logger  logging.Logger
	metrics *instrumentation.Metrics
}

// NewAggregator creates an Aggregator fetching through getter.
func NewAggregator(getter MessageGetter, opts AggregatorOptions) *Aggregator {
	if opts.BodySource == "" {
		opts.BodySource = BodySnippet
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Aggregator{
		getter:  getter,
		source:  opts.BodySource,
		limiter: opts.Limiter,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// Aggregate fetches every stub and buckets the results by thread id. A
// failed fetch or a message without a thread id is skipped. Only context
// cancellation aborts the page.
func (a *Aggregator) Aggregate(ctx context.Context, stubs []*gmailv1.Message) (*ThreadSet, error) {
	set := NewThreadSet()
	for _, stub := range stubs {
		if stub == nil {
			continue
		}
		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		msg, err := a.getter.GetMessage(ctx, stub.Id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.metrics.RecordMessageSkipped(ctx, instrumentation.SkipFetchError)
			a.logger.Warn("skipping message", logging.Message(stub.Id), logging.Err(err))
			continue
		}
		if msg.ThreadId == "" {
			a.metrics.RecordMessageSkipped(ctx, instrumentation.SkipMissingThread)
			a.logger.Warn("skipping message without thread", logging.Message(stub.Id))
			continue
		}

		set.Add(msg.ThreadId, a.segment(msg), msg)
	}
	return set, nil
}

func (a *Aggregator) segment(msg *gmailv1.Message) string {
	if a.source == BodyPlainText {
		return strings.Join(PlainTextSegments(msg.Payload), "\n\n")
	}
	return msg.Snippet
}
