// Package tagstest builds tagged audio fixtures in memory for tests.
package tagstest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

// Frame is an ID3v2.3 frame
type Frame struct {
	ID   string
	Data []byte
}

// Text builds an ISO-8859-1 text frame (TIT2, TPE1, TALB, ...)
func Text(id, value string) Frame {
	return Frame{ID: id, Data: append([]byte{0x00}, value...)}
}

// Picture builds an APIC front-cover frame
func Picture(mime string, data []byte) Frame {
	var b bytes.Buffer
	b.WriteByte(0x00) // encoding
	b.WriteString(mime)
	b.WriteByte(0x00)
	b.WriteByte(0x03) // front cover
	b.WriteByte(0x00) // empty description
	b.Write(data)
	return Frame{ID: "APIC", Data: b.Bytes()}
}

// ID3v2 encodes an ID3v2.3 tag holding frames, followed by padding
func ID3v2(frames ...Frame) []byte {
	var body bytes.Buffer
	for _, f := range frames {
		body.WriteString(f.ID)
		size := make([]byte, 4)
		binary.BigEndian.PutUint32(size, uint32(len(f.Data)))
		body.Write(size)
		body.Write([]byte{0x00, 0x00})
		body.Write(f.Data)
	}
	body.Write(make([]byte, 16))

	var out bytes.Buffer
	out.WriteString("ID3")
	out.Write([]byte{0x03, 0x00, 0x00})
	out.Write(syncsafe(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

// TruncatedID3v2 returns an ID3v2 header whose declared size exceeds the data
func TruncatedID3v2() []byte {
	var out bytes.Buffer
	out.WriteString("ID3")
	out.Write([]byte{0x03, 0x00, 0x00})
	out.Write(syncsafe(4096))
	out.WriteString("TIT2")
	out.Write([]byte{0x00, 0x00, 0x10, 0x00, 0x00, 0x00})
	out.WriteByte(0x00)
	return out.Bytes()
}

// ID3v1 encodes a 128-byte ID3v1 trailer
func ID3v1(title, artist, album string) []byte {
	b := make([]byte, 128)
	copy(b[0:3], "TAG")
	copy(b[3:33], title)
	copy(b[33:63], artist)
	copy(b[63:93], album)
	copy(b[93:97], "2024")
	b[127] = 0xFF
	return b
}

// MP3FrameDuration is the length of one frame built by MP3Frames
const MP3FrameDuration = 1152 * time.Second / 44100

// MP3Frames encodes n silent MPEG-1 Layer III frames, 128 kbit/s at 44.1 kHz,
// each 417 bytes long
func MP3Frames(n int) []byte {
	const frameSize = 417
	out := make([]byte, 0, n*frameSize)
	for i := 0; i < n; i++ {
		frame := make([]byte, frameSize)
		copy(frame, []byte{0xFF, 0xFB, 0x90, 0x00})
		out = append(out, frame...)
	}
	return out
}

// FLACOptions describes a FLAC fixture
type FLACOptions struct {
	Comments   map[string]string
	Picture    []byte
	SampleRate int
	Samples    int64
}

// FLAC encodes a FLAC stream with STREAMINFO, Vorbis comment and picture blocks
// and no audio frames
func FLAC(t testing.TB, opts FLACOptions) []byte {
	t.Helper()

	info := make([]byte, 34)
	binary.BigEndian.PutUint16(info[0:2], 4096)
	binary.BigEndian.PutUint16(info[2:4], 4096)
	packed := uint64(opts.SampleRate)<<44 | uint64(1)<<41 | uint64(15)<<36 | uint64(opts.Samples)
	binary.BigEndian.PutUint64(info[10:18], packed)

	f := &flac.File{
		Meta: []*flac.MetaDataBlock{{Type: flac.StreamInfo, Data: info}},
	}

	if len(opts.Comments) > 0 {
		cmt := flacvorbis.New()
		for k, v := range opts.Comments {
			if err := cmt.Add(k, v); err != nil {
				t.Fatalf("failed to add vorbis comment: %v", err)
			}
		}
		block := cmt.Marshal()
		f.Meta = append(f.Meta, &block)
	}

	if opts.Picture != nil {
		pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "cover", opts.Picture, "image/png")
		if err != nil {
			t.Fatalf("failed to build picture block: %v", err)
		}
		block := pic.Marshal()
		f.Meta = append(f.Meta, &block)
	}

	return f.Marshal()
}

// PNG encodes a solid-colour image
func PNG(t testing.TB, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes the concatenation of parts to dir/name and returns the path
func WriteFile(t testing.TB, dir, name string, parts ...[]byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, bytes.Join(parts, nil), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func syncsafe(n int) []byte {
	return []byte{
		byte(n>>21) & 0x7F,
		byte(n>>14) & 0x7F,
		byte(n>>7) & 0x7F,
		byte(n) & 0x7F,
	}
}
