package tray_test

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/genricoloni/resonance/internal/artwork"
	"github.com/genricoloni/resonance/internal/controller"
	"github.com/genricoloni/resonance/internal/domain"
	"github.com/genricoloni/resonance/internal/media"
	"github.com/genricoloni/resonance/internal/tags/tagstest"
	"github.com/genricoloni/resonance/internal/tray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testConfig struct {
	domain.Config
}

func (testConfig) Identity() string        { return "Resonance" }
func (testConfig) CommandBuffer() int      { return 8 }
func (testConfig) ArtworkCacheDir() string { return "" }
func (testConfig) ArtworkMaxSize() int     { return 128 }
func (testConfig) PaletteSize() int        { return 2 }

// fakeHost records what the sink shows and lets tests click
type fakeHost struct {
	mu       sync.Mutex
	icons    [][]byte
	title    string
	tooltip  string
	items    map[string]chan struct{}
	order    []string
	onTapped func()
}

func newFakeHost() *fakeHost {
	return &fakeHost{items: map[string]chan struct{}{}}
}

func (h *fakeHost) SetIcon(b []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.icons = append(h.icons, b)
}

func (h *fakeHost) SetTitle(title string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.title = title
}

func (h *fakeHost) SetTooltip(tooltip string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tooltip = tooltip
}

func (h *fakeHost) AddMenuItem(title, _ string) <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan struct{})
	h.items[title] = ch
	h.order = append(h.order, title)
	return ch
}

func (h *fakeHost) OnTapped(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onTapped = fn
}

func (h *fakeHost) click(title string) {
	h.mu.Lock()
	ch := h.items[title]
	h.mu.Unlock()
	ch <- struct{}{}
}

func (h *fakeHost) snapshot() (title, tooltip string, icons int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.title, h.tooltip, len(h.icons)
}

func newSink(t *testing.T) (*tray.Sink, *fakeHost, *controller.Commands) {
	t.Helper()
	host := newFakeHost()
	cmds := controller.NewCommands(testConfig{})
	sink, err := tray.New(zap.NewNop(), host, cmds, testConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })
	return sink, host, cmds
}

func receive(t *testing.T, cmds *controller.Commands) domain.Command {
	t.Helper()
	select {
	case cmd := <-cmds.C():
		return cmd
	case <-time.After(2 * time.Second):
		t.Fatal("no command received")
		return domain.Command{}
	}
}

func TestSink_Menu(t *testing.T) {
	_, host, cmds := newSink(t)

	assert.Equal(t, []string{"Play/Pause", "Next", "Previous", "Show", "Quit"}, host.order)

	tests := map[string]domain.CommandKind{
		"Play/Pause": domain.CommandToggle,
		"Next":       domain.CommandSkip,
		"Previous":   domain.CommandPrevious,
		"Show":       domain.CommandRaise,
		"Quit":       domain.CommandQuit,
	}
	for title, want := range tests {
		t.Run(title, func(t *testing.T) {
			host.click(title)
			assert.Equal(t, domain.Command{Kind: want, Origin: "tray"}, receive(t, cmds))
		})
	}
}

func TestSink_LeftClickToggles(t *testing.T) {
	_, host, cmds := newSink(t)
	require.NotNil(t, host.onTapped)

	host.onTapped()
	assert.Equal(t, domain.CommandToggle, receive(t, cmds).Kind)
}

func TestSink_ClickWithClosedQueueIsDropped(t *testing.T) {
	_, host, cmds := newSink(t)
	cmds.Close()
	assert.NotPanics(t, host.onTapped)
}

func TestSink_SongAndState(t *testing.T) {
	sink, host, _ := newSink(t)

	title, tooltip, icons := host.snapshot()
	assert.Equal(t, "Resonance", title)
	assert.Equal(t, "Resonance", tooltip)
	assert.Equal(t, 1, icons, "default icon set on creation")

	require.NoError(t, sink.SetSong(media.NewItem("file:///music/Unknown.mp3")))
	_, tooltip, icons = host.snapshot()
	assert.Equal(t, media.UnknownTitle+" - "+media.UnknownArtist, tooltip)
	assert.Equal(t, 1, icons, "default icon is not re-sent")

	require.NoError(t, sink.SetPlaybackState(domain.StatePlaying))
	title, _, _ = host.snapshot()
	assert.Equal(t, "▶ Resonance", title)

	require.NoError(t, sink.SetPlaybackState(domain.StatePaused))
	title, _, _ = host.snapshot()
	assert.Equal(t, "⏸ Resonance", title)

	require.NoError(t, sink.SetPlaybackState(domain.StateStopped))
	title, _, _ = host.snapshot()
	assert.Equal(t, "Resonance", title)

	assert.NoError(t, sink.SetPosition(time.Minute))
	assert.NoError(t, sink.SetRepeatMode(domain.RepeatAll))
}

func TestSink_CoverIcon(t *testing.T) {
	cfg := testConfig{}
	cache := artwork.NewCache(zap.NewNop(), artwork.NewImageDecoder(zap.NewNop(), nil, cfg), cfg)
	resolver := media.NewResolver(zap.NewNop(), nil, cache)

	path := tagstest.WriteFile(t, t.TempDir(), "cover.mp3", tagstest.ID3v2(
		tagstest.Text("TIT2", "Song"),
		tagstest.Text("TPE1", "Band"),
		tagstest.Picture("image/png", tagstest.PNG(t, 100, 100, color.RGBA{G: 200, A: 255})),
	))
	item := resolver.Resolve(context.Background(), path)
	_, ok := item.Artwork()
	require.True(t, ok)

	sink, host, _ := newSink(t)
	require.NoError(t, sink.SetSong(item))
	require.NoError(t, sink.SetSong(item))

	_, tooltip, icons := host.snapshot()
	assert.Equal(t, "Song - Band", tooltip)
	require.Equal(t, 2, icons, "cover icon rendered once")

	host.mu.Lock()
	icon := host.icons[1]
	host.mu.Unlock()
	img, err := png.Decode(bytes.NewReader(icon))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())

	require.NoError(t, sink.SetSong(nil))
	_, tooltip, icons = host.snapshot()
	assert.Equal(t, "Resonance", tooltip)
	assert.Equal(t, 3, icons, "default icon restored")
}

func TestSink_RegisteredOnHub(t *testing.T) {
	sink, host, _ := newSink(t)
	hub := controller.NewHub(zap.NewNop())
	hub.Register("tray", sink)

	hub.BroadcastPlaybackState(domain.StatePlaying)
	title, _, _ := host.snapshot()
	assert.Equal(t, "▶ Resonance", title)
	require.NoError(t, hub.Close(context.Background()))
}
