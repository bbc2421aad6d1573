package media_test

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/genricoloni/resonance/internal/artwork"
	"github.com/genricoloni/resonance/internal/domain"
	"github.com/genricoloni/resonance/internal/media"
	"github.com/genricoloni/resonance/internal/tags"
	"github.com/genricoloni/resonance/internal/tags/tagstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testConfig struct {
	domain.Config
}

func (testConfig) ArtworkCacheDir() string { return "" }
func (testConfig) ArtworkMaxSize() int     { return 64 }
func (testConfig) PaletteSize() int        { return 3 }
func (testConfig) ResolverWorkers() int    { return 2 }

func newCache() *artwork.Cache {
	cfg := testConfig{}
	return artwork.NewCache(zap.NewNop(), artwork.NewImageDecoder(zap.NewNop(), nil, cfg), cfg)
}

func newResolver(reader tags.Reader) (*media.Resolver, *artwork.Cache) {
	cache := newCache()
	return media.NewResolver(zap.NewNop(), reader, cache), cache
}

// staticReader returns the same containers for every path
func staticReader(primary tags.Tag, containers ...tags.Tag) tags.Reader {
	return tags.ReaderFunc(func(path string) (*tags.File, error) {
		all := containers
		if primary != nil {
			all = append([]tags.Tag{primary}, containers...)
		}
		return tags.NewFile(path, primary, all, 3*time.Minute), nil
	})
}

func failingReader() tags.Reader {
	return tags.ReaderFunc(func(string) (*tags.File, error) {
		return nil, tags.ErrNoTags
	})
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	return tagstest.WriteFile(t, dir, name)
}

func TestResolve_FilenameFallback(t *testing.T) {
	resolver, _ := newResolver(nil)
	dir := t.TempDir()

	tests := []struct {
		name       string
		file       string
		wantArtist string
		wantTitle  string
	}{
		{"artist and title", "Artist - Title.mp3", "Artist", "Title"},
		{"first separator only", "A - B - C.ogg", "A", "B - C"},
		{"no separator", "Intro.flac", media.UnknownArtist, "Intro"},
		{"hyphen without spaces", "Jay-Z.mp3", media.UnknownArtist, "Jay-Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := touch(t, dir, tt.file)
			item := resolver.Resolve(context.Background(), "file://"+path)

			assert.Equal(t, tt.wantArtist, item.Artist())
			assert.Equal(t, tt.wantTitle, item.Title())
			assert.Equal(t, media.UnknownAlbum, item.Album())
			assert.Equal(t, time.Duration(0), item.Duration())
			assert.True(t, item.Valid())
		})
	}
}

func TestResolve_OnlyTitleMissingUsesStem(t *testing.T) {
	resolver, _ := newResolver(staticReader(tags.NewContainer("ID3v2.3").Set(tags.FieldArtist, "Someone")))
	path := touch(t, t.TempDir(), "Other - Track.mp3")

	item := resolver.Resolve(context.Background(), path)
	assert.Equal(t, "Someone", item.Artist())
	assert.Equal(t, "Other - Track", item.Title())
}

func TestResolve_UntaggedStreamKeepsDuration(t *testing.T) {
	resolver, _ := newResolver(nil)
	frames := tagstest.MP3Frames(40)
	path := tagstest.WriteFile(t, t.TempDir(), "Band - Song.mp3", frames[:len(frames)-100])

	item := resolver.Resolve(context.Background(), path)
	assert.Equal(t, "Band", item.Artist())
	assert.Equal(t, "Song", item.Title())
	assert.InDelta(t, float64(39*tagstest.MP3FrameDuration), float64(item.Duration()), float64(time.Millisecond))
	assert.True(t, item.Valid())
}

func TestResolve_PrimaryTagPreferred(t *testing.T) {
	primary := tags.NewContainer("ID3v2.4").
		Set(tags.FieldArtist, "Primary Artist").
		Set(tags.FieldTitle, "Primary Title")
	other := tags.NewContainer("ID3v1").
		Set(tags.FieldArtist, "Trailer Artist").
		Set(tags.FieldTitle, "Trailer Title").
		Set(tags.FieldAlbum, "Trailer Album")

	resolver, _ := newResolver(staticReader(primary, other))
	item := resolver.Resolve(context.Background(), touch(t, t.TempDir(), "x.mp3"))

	assert.Equal(t, "Primary Artist", item.Artist())
	assert.Equal(t, "Primary Title", item.Title())
	assert.Equal(t, media.UnknownAlbum, item.Album(), "album is not merged when a primary tag exists")
	assert.Equal(t, 3*time.Minute, item.Duration())
}

func TestResolve_ScansContainersWithoutPrimary(t *testing.T) {
	onlyTitle := tags.NewContainer("APE").Set(tags.FieldTitle, "Partial")
	complete := tags.NewContainer("ID3v1").
		Set(tags.FieldArtist, "Full Artist").
		Set(tags.FieldTitle, "Full Title")
	withAlbum := tags.NewContainer("VorbisComment").Set(tags.FieldAlbum, "Merged Album")

	resolver, _ := newResolver(staticReader(nil, onlyTitle, complete, withAlbum))
	item := resolver.Resolve(context.Background(), touch(t, t.TempDir(), "x.mp3"))

	assert.Equal(t, "Full Artist", item.Artist())
	assert.Equal(t, "Full Title", item.Title())
	assert.Equal(t, "Merged Album", item.Album())
}

func TestResolve_UnresolvableURIIsPlaceholder(t *testing.T) {
	resolver, _ := newResolver(nil)

	for _, uri := range []string{"", "https://example.com/song.mp3", "file://remote-host/song.mp3", "file://"} {
		t.Run(uri, func(t *testing.T) {
			item := resolver.Resolve(context.Background(), uri)
			require.NotNil(t, item)
			assert.Equal(t, uri, item.URI())
			assert.False(t, item.Valid())
			assert.Equal(t, media.UnknownArtist, item.Artist())
			assert.Equal(t, media.UnknownTitle, item.Title())
			assert.Equal(t, media.UnknownAlbum, item.Album())
			assert.Equal(t, time.Duration(0), item.Duration())
		})
	}
}

func TestResolve_MissingFileHasNoFingerprint(t *testing.T) {
	resolver, _ := newResolver(nil)
	path := filepath.Join(t.TempDir(), "Gone - Missing.mp3")

	item := resolver.Resolve(context.Background(), path)
	assert.False(t, item.Valid())
	assert.Equal(t, "Gone", item.Artist())
	assert.Equal(t, "Missing", item.Title())
}

func TestResolve_ReaderPanicIsRecovered(t *testing.T) {
	resolver, _ := newResolver(tags.ReaderFunc(func(string) (*tags.File, error) {
		panic("corrupt frame")
	}))
	path := touch(t, t.TempDir(), "A - B.mp3")

	var item *media.Item
	require.NotPanics(t, func() {
		item = resolver.Resolve(context.Background(), path)
	})
	assert.False(t, item.Valid())
	assert.Equal(t, media.UnknownTitle, item.Title())
}

func TestResolve_Fingerprint(t *testing.T) {
	tagged := func(album *string) tags.Reader {
		c := tags.NewContainer("ID3v2.3").
			Set(tags.FieldArtist, "Artist").
			Set(tags.FieldTitle, "Title")
		if album != nil {
			c.Set(tags.FieldAlbum, *album)
		}
		return staticReader(c)
	}
	empty := ""

	t.Run("same name and tags collide", func(t *testing.T) {
		resolver, _ := newResolver(tagged(nil))
		a := resolver.Resolve(context.Background(), touch(t, t.TempDir(), "song.mp3"))
		b := resolver.Resolve(context.Background(), touch(t, t.TempDir(), "song.mp3"))

		fa, ok := a.Fingerprint()
		require.True(t, ok)
		fb, ok := b.Fingerprint()
		require.True(t, ok)
		assert.Equal(t, fa, fb)
		assert.NotEqual(t, a.URI(), b.URI())
		assert.True(t, a.Equal(b))
	})

	t.Run("different display names differ", func(t *testing.T) {
		resolver, _ := newResolver(tagged(nil))
		dir := t.TempDir()
		a := resolver.Resolve(context.Background(), touch(t, dir, "one.mp3"))
		b := resolver.Resolve(context.Background(), touch(t, dir, "two.mp3"))
		assert.False(t, a.Equal(b))
	})

	t.Run("absent and empty album differ", func(t *testing.T) {
		absent, _ := newResolver(tagged(nil))
		present, _ := newResolver(tagged(&empty))
		a := absent.Resolve(context.Background(), touch(t, t.TempDir(), "song.mp3"))
		b := present.Resolve(context.Background(), touch(t, t.TempDir(), "song.mp3"))

		assert.Equal(t, media.UnknownAlbum, a.Album())
		assert.Equal(t, "", b.Album())
		assert.False(t, a.Equal(b))
	})

	t.Run("field boundaries are unambiguous", func(t *testing.T) {
		left, _ := newResolver(staticReader(tags.NewContainer("x").
			Set(tags.FieldArtist, "ab").Set(tags.FieldTitle, "c")))
		right, _ := newResolver(staticReader(tags.NewContainer("x").
			Set(tags.FieldArtist, "a").Set(tags.FieldTitle, "bc")))
		a := left.Resolve(context.Background(), touch(t, t.TempDir(), "song.mp3"))
		b := right.Resolve(context.Background(), touch(t, t.TempDir(), "song.mp3"))
		assert.False(t, a.Equal(b))
	})
}

func TestResolve_SharedArtworkDecodedOnce(t *testing.T) {
	resolver, cache := newResolver(nil)
	cover := tagstest.PNG(t, 16, 16, color.RGBA{R: 10, G: 120, B: 220, A: 255})
	dir := t.TempDir()

	var items []*media.Item
	for _, name := range []string{"01.mp3", "02.mp3", "03.mp3"} {
		path := tagstest.WriteFile(t, dir, name, tagstest.ID3v2(
			tagstest.Text("TIT2", name),
			tagstest.Text("TPE1", "Album Artist"),
			tagstest.Text("TALB", "Shared"),
			tagstest.Picture("image/png", cover),
		))
		items = append(items, resolver.Resolve(context.Background(), "file://"+path))
	}

	assert.Equal(t, 1, cache.Len())
	first, ok := items[0].Artwork()
	require.True(t, ok)
	firstUUID, ok := items[0].CoverUUID()
	require.True(t, ok)
	for _, item := range items[1:] {
		art, ok := item.Artwork()
		require.True(t, ok)
		assert.Same(t, first, art)
		id, _ := item.CoverUUID()
		assert.Equal(t, firstUUID, id)
	}

	accent, ok := items[0].CoverColor()
	require.True(t, ok)
	assert.Greater(t, accent.B, accent.R)
}

func TestPathFromURI(t *testing.T) {
	tests := []struct {
		uri     string
		want    string
		wantErr bool
	}{
		{uri: "file:///music/a%20b.mp3", want: filepath.FromSlash("/music/a b.mp3")},
		{uri: "file://localhost/music/a.mp3", want: filepath.FromSlash("/music/a.mp3")},
		{uri: "/music/../music/a.mp3", want: filepath.Clean("/music/a.mp3")},
		{uri: "relative/song.ogg", want: filepath.Clean("relative/song.ogg")},
		{uri: "", wantErr: true},
		{uri: "smb://nas/song.mp3", wantErr: true},
		{uri: "file://%zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := media.PathFromURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func FuzzResolve(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte("ID3"))
	f.Add(tagstest.TruncatedID3v2())
	f.Add(tagstest.ID3v2(tagstest.Text("TIT2", "seed")))
	f.Add(tagstest.ID3v1("t", "a", "b"))
	f.Add([]byte("fLaC\x00\x00\x00\x22"))

	resolver, _ := newResolver(nil)
	dir := f.TempDir()

	f.Fuzz(func(t *testing.T, data []byte) {
		path := filepath.Join(dir, "Fuzz - Case.mp3")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Skip(err)
		}
		item := resolver.Resolve(context.Background(), path)
		if item == nil {
			t.Fatal("nil item")
		}
		if item.URI() != path {
			t.Fatalf("uri changed: %q", item.URI())
		}
		_ = item.Title()
	})
}

func TestFailingReaderStillResolves(t *testing.T) {
	resolver, _ := newResolver(failingReader())
	item := resolver.Resolve(context.Background(), touch(t, t.TempDir(), "Solo.wav"))
	assert.True(t, item.Valid())
	assert.Equal(t, "Solo", item.Title())
}
