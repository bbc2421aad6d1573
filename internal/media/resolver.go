package media

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/genricoloni/resonance/internal/artwork"
	"github.com/genricoloni/resonance/internal/domain"
	"github.com/genricoloni/resonance/internal/tags"
	"go.uber.org/zap"
)

// labels separating the fields hashed into a fingerprint
const (
	labelName   byte = 'n'
	labelArtist byte = 'a'
	labelTitle  byte = 't'
	labelAlbum  byte = 'b'
)

const filenameSeparator = " - "

// Resolver turns URIs into media items. Resolve never fails: any error
// degrades the item to a placeholder.
type Resolver struct {
	logger *zap.Logger
	reader tags.Reader
	cache  *artwork.Cache
}

// NewResolver creates a resolver reading tags with reader; a nil reader uses tags.Read
func NewResolver(logger *zap.Logger, reader tags.Reader, cache *artwork.Cache) *Resolver {
	if reader == nil {
		reader = tags.DefaultReader
	}
	return &Resolver{logger: logger, reader: reader, cache: cache}
}

// Resolve builds a fully resolved item for uri
func (r *Resolver) Resolve(ctx context.Context, uri string) *Item {
	return newResolvedItem(uri, r.resolve(ctx, uri))
}

func (r *Resolver) resolve(ctx context.Context, uri string) (res resolved) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			r.logger.Warn("Metadata resolution panicked, using placeholder",
				zap.String("uri", uri),
				zap.Any("panic", p))
			res = resolved{}
		}
	}()

	path, err := PathFromURI(uri)
	if err != nil {
		r.logger.Debug("Unresolvable URI", zap.String("uri", uri), zap.Error(err))
		return resolved{}
	}

	file, err := r.reader.Read(path)
	if err != nil {
		r.logger.Debug("No readable tags",
			zap.String("path", path),
			zap.Error(err))
		file = nil
	}

	var md Metadata
	var picture tags.Tag
	if file != nil {
		md, picture = pickTags(file)
		md.Duration = file.Duration()
	}
	applyFilenameFallback(&md, path)
	res.metadata = md

	if info, err := os.Stat(path); err == nil {
		fp := fingerprint(info.Name(), md)
		res.fingerprint = &fp
	} else {
		r.logger.Debug("Cannot stat file, fingerprint unavailable",
			zap.String("path", path),
			zap.Error(err))
	}

	if picture != nil && r.cache != nil {
		if art, id, ok := r.cache.GetOrInsert(ctx, path, picture); ok {
			res.artwork = art
			res.coverUUID = id
		}
	}

	r.logger.Debug("Song loaded",
		zap.String("uri", uri),
		zap.Bool("valid", res.fingerprint != nil),
		zap.Duration("elapsed", time.Since(start)))
	return res
}

// PathFromURI accepts file:// URIs and plain filesystem paths
func PathFromURI(uri string) (string, error) {
	if uri == "" {
		return "", fmt.Errorf("empty uri")
	}
	if !strings.Contains(uri, "://") {
		return filepath.Clean(uri), nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid uri: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("remote file host %q", u.Host)
	}
	if u.Path == "" {
		return "", fmt.Errorf("empty path in %q", uri)
	}
	return filepath.FromSlash(u.Path), nil
}

// pickTags selects artist, title and album from the file's containers, and
// the container supplying the cover
func pickTags(file *tags.File) (Metadata, tags.Tag) {
	var md Metadata

	if primary, ok := file.PrimaryTag(); ok {
		md.Artist = field(primary.Artist)
		md.Title = field(primary.Title)
		md.Album = field(primary.Album)
		if _, ok := primary.Picture(); ok {
			return md, primary
		}
		return md, firstWithPicture(file.Tags())
	}

	containers := file.Tags()
	for _, t := range containers {
		artist, title := field(t.Artist), field(t.Title)
		if artist != nil && title != nil {
			md.Artist, md.Title = artist, title
			break
		}
	}
	for _, t := range containers {
		if md.Artist == nil {
			md.Artist = field(t.Artist)
		}
		if md.Title == nil {
			md.Title = field(t.Title)
		}
		if md.Album == nil {
			md.Album = field(t.Album)
		}
	}
	return md, firstWithPicture(containers)
}

func firstWithPicture(containers []tags.Tag) tags.Tag {
	for _, t := range containers {
		if _, ok := t.Picture(); ok {
			return t
		}
	}
	return nil
}

func field(get func() (string, bool)) *string {
	if v, ok := get(); ok {
		return &v
	}
	return nil
}

// applyFilenameFallback fills missing artist and title from "Artist - Title.ext"
func applyFilenameFallback(md *Metadata, path string) {
	if md.Artist != nil && md.Title != nil {
		return
	}
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return
	}

	if md.Artist == nil && md.Title == nil {
		if artist, title, ok := strings.Cut(stem, filenameSeparator); ok {
			md.Artist, md.Title = &artist, &title
			return
		}
	}
	if md.Title == nil {
		md.Title = &stem
	}
}

// fingerprint hashes the display name and every present field. Each field is
// written as label, uvarint length and bytes, so absent and empty differ.
func fingerprint(displayName string, md Metadata) domain.Digest {
	h := sha256.New()
	var lenBuf [binary.MaxVarintLen64]byte

	write := func(label byte, v *string) {
		if v == nil {
			return
		}
		h.Write([]byte{label})
		n := binary.PutUvarint(lenBuf[:], uint64(len(*v)))
		h.Write(lenBuf[:n])
		h.Write([]byte(*v))
	}

	write(labelName, &displayName)
	write(labelArtist, md.Artist)
	write(labelTitle, md.Title)
	write(labelAlbum, md.Album)

	var d domain.Digest
	copy(d[:], h.Sum(nil))
	return d
}
