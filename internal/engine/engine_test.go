package engine_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/genricoloni/resonance/internal/controller"
	"github.com/genricoloni/resonance/internal/domain"
	"github.com/genricoloni/resonance/internal/engine"
	"github.com/genricoloni/resonance/internal/engine/mocks"
	"github.com/genricoloni/resonance/internal/media"
	"github.com/genricoloni/resonance/internal/player"
	"github.com/genricoloni/resonance/internal/tags/tagstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type testConfig struct {
	domain.Config
}

func (testConfig) ResolverWorkers() int { return 1 }
func (testConfig) CommandBuffer() int   { return 16 }

type fakePlayer struct {
	events chan player.Event

	mu      sync.Mutex
	applied []domain.Command
	loaded  []*media.Item
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{events: make(chan player.Event, 16)}
}

func (p *fakePlayer) Events() <-chan player.Event { return p.events }

func (p *fakePlayer) Apply(cmd domain.Command) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applied = append(p.applied, cmd)
	return nil
}

func (p *fakePlayer) Load(items []*media.Item) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = items
}

func (p *fakePlayer) Applied() []domain.Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Command(nil), p.applied...)
}

type fakeShutdowner struct {
	mu    sync.Mutex
	calls int
}

func (s *fakeShutdowner) Shutdown(...fx.ShutdownOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return nil
}

func (s *fakeShutdowner) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type nopEnqueuer struct{}

func (nopEnqueuer) Enqueue(*media.Item) error { return nil }

func startEngine(t *testing.T, e *engine.Engine) {
	t.Helper()
	require.NoError(t, e.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		assert.NoError(t, e.Stop(ctx))
	})
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}

func TestEngine_BroadcastsPlayerEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	hub := mocks.NewMockBroadcaster(ctrl)
	p := newFakePlayer()

	first := media.NewItem("file:///a.mp3")
	second := media.NewItem("file:///b.mp3")
	done := make(chan struct{})

	gomock.InOrder(
		hub.EXPECT().BroadcastSong(first),
		hub.EXPECT().BroadcastPosition(time.Duration(0)),
		hub.EXPECT().BroadcastPlaybackState(domain.StatePlaying),
		hub.EXPECT().BroadcastRepeatMode(domain.RepeatAll),
		hub.EXPECT().BroadcastSong(second).Do(func(*media.Item) { close(done) }),
	)

	e := engine.NewEngine(zap.NewNop(), p, hub, make(chan domain.Command), nopEnqueuer{}, &fakeShutdowner{})
	startEngine(t, e)

	p.events <- player.Event{Kind: player.SongChanged, Song: first}
	p.events <- player.Event{Kind: player.PositionChanged}
	p.events <- player.Event{Kind: player.PlaybackStateChanged, State: domain.StatePlaying}
	p.events <- player.Event{Kind: player.RepeatModeChanged, Repeat: domain.RepeatAll}
	p.events <- player.Event{Kind: player.SongChanged, Song: second}
	wait(t, done)

	assert.False(t, first.Playing(), "previous song is no longer playing")
	assert.True(t, second.Playing())
}

func TestEngine_AppliesCommandsInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := newFakePlayer()
	cmds := controller.NewCommands(testConfig{})
	shutdowner := &fakeShutdowner{}

	e := engine.NewEngine(zap.NewNop(), p, mocks.NewMockBroadcaster(ctrl), cmds.C(), nopEnqueuer{}, shutdowner)
	startEngine(t, e)

	sent := []domain.Command{
		{Kind: domain.CommandSkip, Origin: "mpris"},
		{Kind: domain.CommandSkip, Origin: "tray"},
		{Kind: domain.CommandRaise, Origin: "mpris"},
		{Kind: domain.CommandSeek, Offset: 5 * time.Second, Origin: "mpris"},
		{Kind: domain.CommandPause, Origin: "tray"},
	}
	for _, cmd := range sent {
		require.NoError(t, cmds.Send(cmd))
	}

	want := []domain.Command{sent[0], sent[1], sent[3], sent[4]}
	require.Eventually(t, func() bool { return len(p.Applied()) == len(want) }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, want, p.Applied(), "raise is handled by the engine")
	assert.Zero(t, shutdowner.Calls())
}

func TestEngine_QuitRequestsShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := newFakePlayer()
	cmds := controller.NewCommands(testConfig{})
	shutdowner := &fakeShutdowner{}

	e := engine.NewEngine(zap.NewNop(), p, mocks.NewMockBroadcaster(ctrl), cmds.C(), nopEnqueuer{}, shutdowner)
	startEngine(t, e)

	require.NoError(t, cmds.Send(domain.Command{Kind: domain.CommandQuit, Origin: "tray"}))
	require.Eventually(t, func() bool { return shutdowner.Calls() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, p.Applied())
}

func TestEngine_RebroadcastsResolvedCurrentSong(t *testing.T) {
	ctrl := gomock.NewController(t)
	hub := mocks.NewMockBroadcaster(ctrl)
	p := newFakePlayer()

	resolver := media.NewResolver(zap.NewNop(), nil, nil)
	loader := media.NewLoader(zap.NewNop(), resolver, testConfig{})
	t.Cleanup(func() { _ = loader.Stop(context.Background()) })

	path := tagstest.WriteFile(t, t.TempDir(), "song.mp3", tagstest.ID3v2(
		tagstest.Text("TIT2", "Song"),
		tagstest.Text("TPE1", "Band"),
	))

	announced := make(chan struct{})
	resolved := make(chan struct{})
	calls := 0
	hub.EXPECT().BroadcastSong(gomock.Any()).Times(2).Do(func(item *media.Item) {
		calls++
		if calls == 1 {
			assert.Equal(t, media.UnknownArtist, item.Artist())
			close(announced)
			return
		}
		assert.Equal(t, "Song", item.Title())
		assert.Equal(t, "Band", item.Artist())
		close(resolved)
	})
	hub.EXPECT().BroadcastPosition(gomock.Any()).AnyTimes()

	e := engine.NewEngine(zap.NewNop(), p, hub, make(chan domain.Command), loader, &fakeShutdowner{})
	startEngine(t, e)

	e.Load([]string{path})
	p.mu.Lock()
	require.Len(t, p.loaded, 1)
	item := p.loaded[0]
	p.mu.Unlock()
	assert.False(t, item.Valid(), "placeholder until resolved")

	p.events <- player.Event{Kind: player.SongChanged, Song: item}
	wait(t, announced)

	require.NoError(t, loader.Start(context.Background()))
	wait(t, resolved)
}

// heldEnqueuer keeps items until the test hands them to a loader
type heldEnqueuer struct {
	mu    sync.Mutex
	items []*media.Item
}

func (h *heldEnqueuer) Enqueue(item *media.Item) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, item)
	return nil
}

func (h *heldEnqueuer) Items() []*media.Item {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*media.Item(nil), h.items...)
}

func TestEngine_IgnoresResolutionOfPreviousSong(t *testing.T) {
	ctrl := gomock.NewController(t)
	hub := mocks.NewMockBroadcaster(ctrl)
	p := newFakePlayer()
	held := &heldEnqueuer{}

	dir := t.TempDir()
	pathA := tagstest.WriteFile(t, dir, "a.mp3", tagstest.ID3v2(tagstest.Text("TIT2", "A")))
	pathB := tagstest.WriteFile(t, dir, "b.mp3", tagstest.ID3v2(tagstest.Text("TIT2", "B")))

	e := engine.NewEngine(zap.NewNop(), p, hub, make(chan domain.Command), held, &fakeShutdowner{})
	startEngine(t, e)
	e.Load([]string{pathA, pathB})
	items := held.Items()
	require.Len(t, items, 2)
	a, b := items[0], items[1]

	announcedA := make(chan struct{})
	announcedB := make(chan struct{})
	resolvedB := make(chan struct{})
	gomock.InOrder(
		hub.EXPECT().BroadcastSong(a).Do(func(*media.Item) { close(announcedA) }),
		hub.EXPECT().BroadcastSong(b).Do(func(*media.Item) { close(announcedB) }),
		hub.EXPECT().BroadcastSong(b).Do(func(item *media.Item) {
			assert.Equal(t, "B", item.Title())
			close(resolvedB)
		}),
	)

	p.events <- player.Event{Kind: player.SongChanged, Song: a}
	wait(t, announcedA)
	p.events <- player.Event{Kind: player.SongChanged, Song: b}
	wait(t, announcedB)

	// one worker: a resolves and is posted before b
	loader := media.NewLoader(zap.NewNop(), media.NewResolver(zap.NewNop(), nil, nil), testConfig{})
	t.Cleanup(func() { _ = loader.Stop(context.Background()) })
	require.NoError(t, loader.Start(context.Background()))
	require.NoError(t, loader.Enqueue(a))
	require.NoError(t, loader.Enqueue(b))
	wait(t, resolvedB)

	assert.Equal(t, "A", a.Title())
	assert.False(t, a.Playing())
	assert.True(t, b.Playing())
}

func TestEngine_ResolutionAfterStopDoesNotBlockLoader(t *testing.T) {
	ctrl := gomock.NewController(t)
	hub := mocks.NewMockBroadcaster(ctrl)
	p := newFakePlayer()
	held := &heldEnqueuer{}

	e := engine.NewEngine(zap.NewNop(), p, hub, make(chan domain.Command), held, &fakeShutdowner{})
	require.NoError(t, e.Start(context.Background()))

	dir := t.TempDir()
	uris := make([]string, 0, 100)
	for i := 0; i < cap(uris); i++ {
		uris = append(uris, tagstest.WriteFile(t, dir, fmt.Sprintf("%03d.mp3", i), tagstest.ID3v2(tagstest.Text("TIT2", "x"))))
	}
	e.Load(uris)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, e.Stop(ctx))

	var remaining sync.WaitGroup
	loader := media.NewLoader(zap.NewNop(), media.NewResolver(zap.NewNop(), nil, nil), testConfig{})
	for _, item := range held.Items() {
		remaining.Add(1)
		item.OnChange(func(media.Change) { remaining.Done() })
		require.NoError(t, loader.Enqueue(item))
	}
	require.NoError(t, loader.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		remaining.Wait()
		close(done)
	}()
	wait(t, done)
	assert.NoError(t, loader.Stop(context.Background()))
}

func TestEngine_StopsWhenPlayerCloses(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := newFakePlayer()

	e := engine.NewEngine(zap.NewNop(), p, mocks.NewMockBroadcaster(ctrl), make(chan domain.Command), nopEnqueuer{}, &fakeShutdowner{})
	require.NoError(t, e.Start(context.Background()))

	close(p.events)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, e.Stop(ctx))
}

func TestEngine_StopWithoutStart(t *testing.T) {
	e := engine.NewEngine(zap.NewNop(), newFakePlayer(), nil, nil, nopEnqueuer{}, &fakeShutdowner{})
	assert.NoError(t, e.Stop(context.Background()))
}
