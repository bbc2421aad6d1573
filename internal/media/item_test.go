package media_test

import (
	"context"
	"testing"

	"github.com/genricoloni/resonance/internal/media"
	"github.com/genricoloni/resonance/internal/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_FlagsNotifyOnlyOnChange(t *testing.T) {
	item := media.NewItem("file:///a.mp3")

	var changes []media.Change
	item.OnChange(func(c media.Change) { changes = append(changes, c) })

	item.SetPlaying(false)
	item.SetPlaying(true)
	item.SetPlaying(true)
	item.SetSelected(true)
	item.SetSelected(true)
	item.SetSelected(false)

	assert.Equal(t, []media.Change{media.ChangePlaying, media.ChangeSelected, media.ChangeSelected}, changes)
	assert.True(t, item.Playing())
	assert.False(t, item.Selected())
}

func TestItem_Equal(t *testing.T) {
	resolver, _ := newResolver(staticReader(tags.NewContainer("ID3v2.3").
		Set(tags.FieldArtist, "Artist").
		Set(tags.FieldTitle, "Title")))
	path := touch(t, t.TempDir(), "song.mp3")
	ctx := context.Background()

	t.Run("placeholders compare by uri", func(t *testing.T) {
		assert.True(t, media.NewItem("file:///x.mp3").Equal(media.NewItem("file:///x.mp3")))
		assert.False(t, media.NewItem("file:///x.mp3").Equal(media.NewItem("file:///y.mp3")))
	})

	t.Run("placeholder and resolved item share a uri", func(t *testing.T) {
		placeholder := media.NewItem(path)
		resolved := resolver.Resolve(ctx, path)
		require.True(t, resolved.Valid())
		assert.True(t, placeholder.Equal(resolved))
		assert.True(t, resolved.Equal(placeholder))
	})

	t.Run("re-resolution keeps equality", func(t *testing.T) {
		before := resolver.Resolve(ctx, path)
		after := resolver.Resolve(ctx, "file://"+path)
		assert.NotEqual(t, before.URI(), after.URI())
		assert.True(t, before.Equal(after))
	})

	t.Run("flags never affect equality", func(t *testing.T) {
		a := resolver.Resolve(ctx, path)
		b := resolver.Resolve(ctx, path)
		a.SetPlaying(true)
		b.SetSelected(true)
		assert.True(t, a.Equal(b))
	})

	t.Run("nil", func(t *testing.T) {
		var none *media.Item
		assert.True(t, none.Equal(nil))
		assert.False(t, none.Equal(media.NewItem("x")))
		assert.False(t, media.NewItem("x").Equal(nil))
	})
}

func TestItem_Accessors(t *testing.T) {
	item := media.NewItem("file:///b.mp3")
	assert.Equal(t, "Unknown artist Unknown album Unknown title", item.SearchKey())
	assert.Equal(t, "Item(file:///b.mp3)", item.String())

	_, ok := item.Artwork()
	assert.False(t, ok)
	_, ok = item.CoverUUID()
	assert.False(t, ok)
	_, ok = item.CoverColor()
	assert.False(t, ok)

	resolver, _ := newResolver(staticReader(tags.NewContainer("ID3v2.3").
		Set(tags.FieldArtist, "Boards of Canada").
		Set(tags.FieldTitle, "Roygbiv").
		Set(tags.FieldAlbum, "Music Has the Right to Children")))
	resolved := resolver.Resolve(context.Background(), touch(t, t.TempDir(), "roygbiv.mp3"))

	assert.Equal(t, "Boards of Canada Music Has the Right to Children Roygbiv", resolved.SearchKey())
	fp, ok := resolved.Fingerprint()
	require.True(t, ok)
	assert.Contains(t, resolved.String(), fp.Short())

	md := resolved.Metadata()
	require.NotNil(t, md.Album)
	assert.Equal(t, "Music Has the Right to Children", *md.Album)
}
