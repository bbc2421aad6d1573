package tags

import (
	"fmt"
	"io"
	"time"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

const (
	flacMagic  = "fLaC"
	formatFLAC = "FLAC"
)

var vorbisFields = map[Field]string{
	FieldTitle:  flacvorbis.FIELD_TITLE,
	FieldArtist: flacvorbis.FIELD_ARTIST,
	FieldAlbum:  flacvorbis.FIELD_ALBUM,
}

// readFLAC parses the FLAC metadata blocks directly. It returns the Vorbis
// comment and picture blocks as one container and the STREAMINFO duration.
func readFLAC(r io.ReadSeeker) (*Container, time.Duration, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, 0, err
	}
	f, err := flac.ParseMetadata(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse metadata blocks: %w", err)
	}

	var duration time.Duration
	if info, err := f.GetStreamInfo(); err == nil && info.SampleRate > 0 {
		duration = samplesDuration(info.SampleCount, int64(info.SampleRate))
	}

	var c *Container
	for _, block := range f.Meta {
		switch block.Type {
		case flac.VorbisComment:
			cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				continue
			}
			if c == nil {
				c = NewContainer(formatFLAC)
			}
			for field, name := range vorbisFields {
				if values, err := cmt.Get(name); err == nil && len(values) > 0 {
					if _, seen := c.Fields[field]; !seen {
						c.Set(field, values[0])
					}
				}
			}
		case flac.Picture:
			pic, err := flacpicture.ParseFromMetaDataBlock(*block)
			if err != nil {
				continue
			}
			if c == nil {
				c = NewContainer(formatFLAC)
			}
			c.AddPicture(pic.ImageData)
		}
	}

	return c, duration, nil
}

// samplesDuration converts a sample count at rate to a duration. Whole
// seconds are split off first so long streams do not overflow.
func samplesDuration(samples, rate int64) time.Duration {
	secs, rem := samples/rate, samples%rate
	return time.Duration(secs)*time.Second + time.Duration(rem)*time.Second/time.Duration(rate)
}
