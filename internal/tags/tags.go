// Package tags reads the tag containers embedded in an audio file.
//
// A file may carry several containers (an ID3v2 header and an ID3v1 trailer,
// a FLAC Vorbis comment block, ...). The first container recognised by the
// file's leading magic is the primary tag; every readable container is listed
// by Tags in file order.
package tags

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// ErrNoTags is returned when no tag container could be read from a file
var ErrNoTags = errors.New("no tag containers found")

// Field identifies a textual tag field
type Field int

const (
	FieldArtist Field = iota
	FieldTitle
	FieldAlbum
)

// Tag is a single tag container. Every accessor is optional: the boolean
// reports whether the container carries the field at all, which is distinct
// from carrying it with an empty value.
type Tag interface {
	Format() string
	Artist() (string, bool)
	Title() (string, bool)
	Album() (string, bool)
	// Picture returns the first embedded picture
	Picture() ([]byte, bool)
}

// Container is the concrete Tag produced by Read
type Container struct {
	Kind     string
	Fields   map[Field]string
	Pictures [][]byte
}

// NewContainer creates an empty container of the given format
func NewContainer(kind string) *Container {
	return &Container{Kind: kind, Fields: make(map[Field]string)}
}

// Set records a field value, marking it present
func (c *Container) Set(f Field, value string) *Container {
	c.Fields[f] = value
	return c
}

// AddPicture appends an embedded picture; empty blobs are ignored
func (c *Container) AddPicture(data []byte) *Container {
	if len(data) > 0 {
		c.Pictures = append(c.Pictures, data)
	}
	return c
}

func (c *Container) Format() string { return c.Kind }

func (c *Container) Artist() (string, bool) { return c.field(FieldArtist) }

func (c *Container) Title() (string, bool) { return c.field(FieldTitle) }

func (c *Container) Album() (string, bool) { return c.field(FieldAlbum) }

func (c *Container) Picture() ([]byte, bool) {
	if len(c.Pictures) == 0 {
		return nil, false
	}
	return c.Pictures[0], true
}

func (c *Container) field(f Field) (string, bool) {
	v, ok := c.Fields[f]
	return v, ok
}

// File is the result of reading a media file's tags
type File struct {
	path     string
	primary  Tag
	tags     []Tag
	duration time.Duration
}

// NewFile assembles a File; primary may be nil
func NewFile(path string, primary Tag, containers []Tag, duration time.Duration) *File {
	return &File{path: path, primary: primary, tags: containers, duration: duration}
}

// Path returns the file the tags were read from
func (f *File) Path() string { return f.path }

// PrimaryTag returns the container identified by the file's leading magic
func (f *File) PrimaryTag() (Tag, bool) {
	return f.primary, f.primary != nil
}

// Tags returns every readable container in file order
func (f *File) Tags() []Tag { return f.tags }

// Duration returns the stream duration, or 0 when unknown
func (f *File) Duration() time.Duration { return f.duration }

// Reader reads tag containers from a path. Read is the default implementation.
type Reader interface {
	Read(path string) (*File, error)
}

// ReaderFunc adapts a function to the Reader interface
type ReaderFunc func(path string) (*File, error)

func (fn ReaderFunc) Read(path string) (*File, error) { return fn(path) }

// DefaultReader reads files with Read
var DefaultReader Reader = ReaderFunc(Read)

// Read parses all tag containers of the file at path. A FLAC or MP3 stream
// without any container yields a File with no tags and its duration.
// Malformed input never panics: a panic inside a container parser is
// converted into an error.
func Read(path string) (f *File, err error) {
	defer func() {
		if r := recover(); r != nil {
			f = nil
			err = fmt.Errorf("tag parser panic on %s: %v", path, r)
		}
	}()

	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer fh.Close()

	magic := make([]byte, 4)
	if _, err := io.ReadFull(fh, magic); err != nil {
		return nil, fmt.Errorf("%w: file too short", ErrNoTags)
	}

	result := &File{path: path}
	var errs []error

	primary, err := readPrimary(fh)
	if err != nil {
		errs = append(errs, fmt.Errorf("primary tag: %w", err))
	} else {
		result.primary = primary
		result.tags = append(result.tags, primary)
	}

	// An ID3v1 trailer may coexist with any leading container
	if primary == nil || primary.Format() != formatID3v1 {
		if v1, err := readID3v1(fh); err == nil {
			result.tags = append(result.tags, v1)
		}
	}

	// The stream itself parsed: a file without tags still has a duration
	parsed := false

	isFLAC := string(magic) == flacMagic
	if isFLAC {
		block, duration, err := readFLAC(fh)
		if err != nil {
			errs = append(errs, fmt.Errorf("flac metadata: %w", err))
		} else {
			parsed = true
			result.duration = duration
			if primary == nil && block != nil {
				result.tags = append(result.tags, block)
			}
		}
	}

	if !isFLAC && isMP3(magic, primary) {
		result.duration = mp3Duration(fh, magic)
		parsed = parsed || result.duration > 0
	}

	if len(result.tags) == 0 && !parsed {
		return nil, errors.Join(append([]error{ErrNoTags}, errs...)...)
	}

	return result, nil
}
