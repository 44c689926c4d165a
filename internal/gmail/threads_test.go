package gmail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmailv1 "google.golang.org/api/gmail/v1"
	"golang.org/x/time/rate"
)

func stubs(ids ...string) []*gmailv1.Message {
	out := make([]*gmailv1.Message, 0, len(ids))
	for _, id := range ids {
		out = append(out, &gmailv1.Message{Id: id})
	}
	return out
}

func TestAggregator_GroupsByThreadInFetchOrder(t *testing.T) {
	fake := newFakeMailbox()
	fake.add(
		message("1", "T", "snippet1", "a@example.com", "s"),
		message("2", "T", "snippet2", "b@example.com", "s"),
		message("3", "U", "snippet3", "c@example.com", "s"),
	)

	set, err := NewAggregator(fake, AggregatorOptions{}).Aggregate(context.Background(), stubs("1", "2", "3"))
	require.NoError(t, err)

	assert.Equal(t, []string{"T", "U"}, set.IDs())
	assert.Equal(t, []string{"snippet1", "snippet2"}, set.Segments("T"))
	assert.Equal(t, []string{"snippet3"}, set.Segments("U"))
	require.Len(t, set.Messages("T"), 2)
	assert.Equal(t, "2", set.Messages("T")[1].Id)
	assert.Equal(t, []string{"1", "2", "3"}, fake.getCalls)
}

func TestAggregator_SkipsFailedAndThreadless(t *testing.T) {
	fake := newFakeMailbox()
	fake.add(
		message("1", "T", "kept", "a@example.com", "s"),
		message("2", "", "no thread", "a@example.com", "s"),
		message("4", "T", "also kept", "a@example.com", "s"),
	)
	fake.getErr["3"] = errors.New("status 500")

	set, err := NewAggregator(fake, AggregatorOptions{}).Aggregate(context.Background(), stubs("1", "2", "3", "4"))
	require.NoError(t, err)

	assert.Equal(t, []string{"T"}, set.IDs())
	assert.Equal(t, []string{"kept", "also kept"}, set.Segments("T"))
}

func TestAggregator_PlainTextBodySource(t *testing.T) {
	fake := newFakeMailbox()
	fake.add(message("1", "T", "preview", "a@example.com", "s"))

	set, err := NewAggregator(fake, AggregatorOptions{BodySource: BodyPlainText}).Aggregate(context.Background(), stubs("1"))
	require.NoError(t, err)

	assert.Equal(t, []string{"body of 1"}, set.Segments("T"))
}

func TestAggregator_CancelledContext(t *testing.T) {
	fake := newFakeMailbox()
	fake.add(message("1", "T", "x", "a", "s"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	limiter.Allow()

	_, err := NewAggregator(fake, AggregatorOptions{Limiter: limiter}).Aggregate(ctx, stubs("1"))
	assert.Error(t, err)
	assert.Empty(t, fake.getCalls)
}

func TestAggregator_EmptyPage(t *testing.T) {
	set, err := NewAggregator(newFakeMailbox(), AggregatorOptions{}).Aggregate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestThreadSet_Merging(t *testing.T) {
	s := NewThreadSet()
	s.AppendSegments("a", []string{"1"})
	s.SetSegments("b", []string{"2"})
	s.AppendSegments("a", []string{"3"})
	s.SetSegments("b", []string{"4"})

	if diff := cmp.Diff([]string{"1", "3", "4"}, s.Flatten()); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"a", "b"}, s.IDs())
}

func TestParseBodySource(t *testing.T) {
	got, err := ParseBodySource("")
	require.NoError(t, err)
	assert.Equal(t, BodySnippet, got)

	got, err = ParseBodySource("plaintext")
	require.NoError(t, err)
	assert.Equal(t, BodyPlainText, got)

	_, err = ParseBodySource("html")
	assert.Error(t, err)
}
