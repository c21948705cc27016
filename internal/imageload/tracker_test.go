package imageload

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestRequestWins(t *testing.T) {
	tr := NewTracker(nil)
	a := tr.Request("a.tif")
	b := tr.Request("b.tif")

	src, ok := tr.Pending()
	require.True(t, ok)
	assert.Equal(t, "b.tif", src)

	assert.False(t, tr.Complete(a), "superseded")
	assert.True(t, tr.Complete(b))
	assert.False(t, tr.Complete(b), "already completed")

	_, ok = tr.Pending()
	assert.False(t, ok)
}

func TestSameSourceRequestedTwice(t *testing.T) {
	tr := NewTracker(nil)
	first := tr.Request("a.tif")
	second := tr.Request("a.tif")
	assert.False(t, tr.Complete(first), "tickets differ even for the same source")
	assert.True(t, tr.Complete(second))
}

func TestLoadDropsStaleResults(t *testing.T) {
	tr := NewTracker(nil)
	release := make(chan struct{})
	results := make(chan string, 2)

	slow := func(ctx context.Context, src string) (string, error) {
		<-release
		return src, nil
	}
	fast := func(ctx context.Context, src string) (string, error) {
		return src, errors.New("not found")
	}

	Load(context.Background(), tr, "slow", slow, func(v string, err error) { results <- v })
	Load(context.Background(), tr, "fast", fast, func(v string, err error) {
		assert.Error(t, err)
		results <- v
	})
	assert.Equal(t, "fast", <-results)

	close(release)
	// a third request observes that the slow one was dropped
	Load(context.Background(), tr, "last", fast, func(v string, err error) { results <- v })
	assert.Equal(t, "last", <-results)
	select {
	case v := <-results:
		t.Fatalf("unexpected result %q", v)
	default:
	}
}
