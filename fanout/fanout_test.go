package fanout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syndicate-service/model"
	"syndicate-service/notifier"
	"syndicate-service/publisher"
)

type fakePublisher struct {
	name   string
	fail   bool
	panics bool
	mu     sync.Mutex
	calls  int
}

func (f *fakePublisher) Name() string  { return f.name }
func (f *fakePublisher) Enabled() bool { return true }

func (f *fakePublisher) Publish(_ context.Context, _ model.PublishableContent) model.PublishResult {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.panics {
		panic("adapter bug")
	}
	if f.fail {
		return model.Failure(f.name, errors.New("remote unavailable"))
	}
	return model.Success(f.name, "id-"+f.name)
}

func (f *fakePublisher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeNotifier) Notify(_ context.Context, _ string) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func testArticle() model.Article {
	return model.Article{
		ID:         "a-1",
		Title:      "Hidden Coves of Menorca",
		URL:        "https://wayfarerlog.com/hidden-coves-menorca",
		Image:      "https://wayfarerlog.com/images/coves.jpg",
		Categories: []string{"destinations"},
		Published:  true,
	}
}

func resultFor(t *testing.T, results []model.PublishResult, platform string) model.PublishResult {
	t.Helper()
	for _, r := range results {
		if r.Platform == platform {
			return r
		}
	}
	t.Fatalf("no result for platform %s", platform)
	return model.PublishResult{}
}

func TestDistributeIsolatesFailures(t *testing.T) {
	good := &fakePublisher{name: "good"}
	bad := &fakePublisher{name: "bad", fail: true}
	other := &fakePublisher{name: "other"}

	d := NewWith([]publisher.Publisher{good, bad, other}, nil, nil)
	results := d.Distribute(context.Background(), testArticle())

	require.Len(t, results, 3)
	assert.True(t, resultFor(t, results, "good").OK)
	assert.True(t, resultFor(t, results, "other").OK)
	assert.False(t, resultFor(t, results, "bad").OK)
	assert.Equal(t, "id-good", resultFor(t, results, "good").RemoteID)
}

func TestDistributeSkipsImageOnlyTargetsWithoutImage(t *testing.T) {
	always := &fakePublisher{name: "always"}
	withImage := &fakePublisher{name: "with-image"}

	d := NewWith([]publisher.Publisher{always}, []publisher.Publisher{withImage}, nil)

	article := testArticle()
	article.Image = ""
	d.Distribute(context.Background(), article)

	assert.Equal(t, 1, always.callCount())
	assert.Equal(t, 0, withImage.callCount())
}

func TestDistributeIncludesImageOnlyTargetsWithImage(t *testing.T) {
	always := &fakePublisher{name: "always"}
	withImage := &fakePublisher{name: "with-image"}

	d := NewWith([]publisher.Publisher{always}, []publisher.Publisher{withImage}, nil)
	results := d.Distribute(context.Background(), testArticle())

	assert.Len(t, results, 2)
	assert.Equal(t, 1, withImage.callCount())
}

func TestDistributeRunsNotifiers(t *testing.T) {
	n1 := &fakeNotifier{}
	n2 := &fakeNotifier{}

	d := NewWith(nil, nil, []notifier.Notifier{n1, n2})
	d.Distribute(context.Background(), testArticle())

	assert.Equal(t, 1, n1.calls)
	assert.Equal(t, 1, n2.calls)
}

func TestDistributeRecoversAdapterPanic(t *testing.T) {
	stable := &fakePublisher{name: "stable"}
	broken := &fakePublisher{name: "broken", panics: true}

	d := NewWith([]publisher.Publisher{stable, broken}, nil, nil)

	var results []model.PublishResult
	require.NotPanics(t, func() {
		results = d.Distribute(context.Background(), testArticle())
	})

	require.Len(t, results, 2)
	assert.True(t, resultFor(t, results, "stable").OK)
	assert.False(t, resultFor(t, results, "broken").OK)
}
