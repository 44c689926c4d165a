package gmail

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mtanzim/mcptools/internal/instrumentation"
	"github.com/mtanzim/mcptools/internal/logging"
)

// MergeMode decides how a thread seen on several pages is combined.
type MergeMode string

const (
	// MergeLastPageWins keeps only the fragments rendered on the latest page
	// that touched a thread. The thread keeps its original position.
	MergeLastPageWins MergeMode = "last-page-wins"
	// MergeAppend adds later pages' fragments after the earlier ones.
	MergeAppend MergeMode = "append"
)

// ParseMergeMode validates a merge mode name. Empty means MergeLastPageWins.
func ParseMergeMode(s string) (MergeMode, error) {
	switch MergeMode(s) {
	case "", MergeLastPageWins:
		return MergeLastPageWins, nil
	case MergeAppend:
		return MergeAppend, nil
	default:
		return "", fmt.Errorf("invalid merge mode %q, must be one of: last-page-wins, append", s)
	}
}

// WalkOptions configures one pagination walk.
type WalkOptions struct {
	Days     int
	PageSize int64
	Merge    MergeMode

	// DisablePagination stops after the first page.
	DisablePagination bool

	// MaxPages stops the walk after that many pages. Zero walks until Gmail
	// stops returning a continuation token.
	MaxPages int
}

// Walker pages through inbox messages and renders every thread per page.
type Walker struct {
	lister     MessageLister
	aggregator *Aggregator
	logger     logging.Logger
	metrics    *instrumentation.Metrics
}

// NewWalker creates a Walker.
func NewWalker(lister MessageLister, aggregator *Aggregator, logger logging.Logger, metrics *instrumentation.Metrics) *Walker {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Walker{lister: lister, aggregator: aggregator, logger: logger, metrics: metrics}
}

// Walk lists, aggregates and renders page after page, then merges each
// page into the result. An error on the first page is returned; an error
// on a later page ends the walk with what was merged so far.
func (w *Walker) Walk(ctx context.Context, opts WalkOptions, frag Fragment) (*ThreadSet, error) {
	result := NewThreadSet()
	history := NewThreadSet()
	token := ""

	for page := 0; ; page++ {
		if opts.MaxPages > 0 && page >= opts.MaxPages {
			w.logger.Info("page limit reached", logging.Page(page))
			break
		}

		pageSet, next, err := w.page(ctx, opts, page, token, history, frag)
		w.metrics.RecordPageFetched(ctx, instrumentation.StatusFor(err))
		if err != nil {
			if page == 0 {
				return nil, err
			}
			w.logger.Warn("stopping pagination", logging.Page(page), logging.Err(err))
			break
		}

		merge(result, pageSet, opts.Merge)

		if next == "" || opts.DisablePagination {
			break
		}
		token = next
	}
	return result, nil
}

func (w *Walker) page(ctx context.Context, opts WalkOptions, page int, token string, history *ThreadSet, frag Fragment) (set *ThreadSet, next string, err error) {
	ctx, span := instrumentation.StartSpan(ctx, "gmail.page",
		attribute.Int(instrumentation.SpanAttrPage, page),
		attribute.Int(instrumentation.SpanAttrDays, opts.Days),
	)
	defer func() { instrumentation.EndSpan(span, err) }()

	res, err := w.lister.ListMessages(ctx, ListQuery{Days: opts.Days, PageSize: opts.PageSize, PageToken: token})
	if err != nil {
		return nil, "", err
	}
	span.SetAttributes(attribute.Int(instrumentation.SpanAttrMessages, len(res.Messages)))

	set, err = w.aggregator.Aggregate(ctx, res.Messages)
	if err != nil {
		return nil, "", err
	}
	span.SetAttributes(attribute.Int(instrumentation.SpanAttrThreads, set.Len()))

	for _, id := range set.IDs() {
		history.AddMessages(id, set.Messages(id))
		rendered, err := RenderThread(frag, id, set.Segments(id), history.Messages(id))
		if err != nil {
			return nil, "", err
		}
		w.metrics.RecordSnippetsRendered(ctx, id, len(rendered))
		set.SetSegments(id, rendered)
	}

	w.logger.Debug("page processed", logging.Page(page), logging.Status(instrumentation.StatusSuccess))
	return set, res.NextPageToken, nil
}

func merge(dst, src *ThreadSet, mode MergeMode) {
	for _, id := range src.IDs() {
		if mode == MergeAppend {
			dst.AppendSegments(id, src.Segments(id))
		} else {
			dst.SetSegments(id, src.Segments(id))
		}
		dst.AddMessages(id, src.Messages(id))
	}
}
