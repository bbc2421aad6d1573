package tags

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhowden/tag"
)

const formatID3v1 = string(tag.ID3v1)

// Raw frame names per container format, used to tell an absent field from an
// empty one
var rawKeys = map[tag.Format]map[Field][]string{
	tag.ID3v2_2: {
		FieldTitle:  {"TT2"},
		FieldArtist: {"TP1"},
		FieldAlbum:  {"TAL"},
	},
	tag.ID3v2_3: {
		FieldTitle:  {"TIT2"},
		FieldArtist: {"TPE1"},
		FieldAlbum:  {"TALB"},
	},
	tag.ID3v2_4: {
		FieldTitle:  {"TIT2"},
		FieldArtist: {"TPE1"},
		FieldAlbum:  {"TALB"},
	},
	tag.VORBIS: {
		FieldTitle:  {"title"},
		FieldArtist: {"artist"},
		FieldAlbum:  {"album"},
	},
	tag.MP4: {
		FieldTitle:  {"\xa9nam"},
		FieldArtist: {"\xa9ART"},
		FieldAlbum:  {"\xa9alb"},
	},
}

func readPrimary(r io.ReadSeeker) (Tag, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	m, err := tag.ReadFrom(r)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("empty metadata")
	}
	return fromMetadata(m), nil
}

func readID3v1(r io.ReadSeeker) (Tag, error) {
	m, err := tag.ReadID3v1Tags(r)
	if err != nil {
		return nil, err
	}
	return fromMetadata(m), nil
}

// fromMetadata converts a dhowden/tag result into a Container
func fromMetadata(m tag.Metadata) *Container {
	c := NewContainer(string(m.Format()))
	raw := m.Raw()

	values := map[Field]string{
		FieldTitle:  m.Title(),
		FieldArtist: m.Artist(),
		FieldAlbum:  m.Album(),
	}
	for f, v := range values {
		v = strings.TrimSpace(v)
		if v != "" || hasRawKey(raw, m.Format(), f) {
			c.Set(f, v)
		}
	}

	if pic := m.Picture(); pic != nil {
		c.AddPicture(pic.Data)
	}
	return c
}

// hasRawKey reports whether the container carries the frame for f.
// ID3v1 fields are fixed-width and always present, so only non-empty values count there.
func hasRawKey(raw map[string]interface{}, format tag.Format, f Field) bool {
	keys, ok := rawKeys[format]
	if !ok {
		return false
	}
	for _, k := range keys[f] {
		if _, ok := raw[k]; ok {
			return true
		}
	}
	return false
}
