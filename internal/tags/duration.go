package tags

import (
	"errors"
	"io"
	"time"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"
)

const (
	id3v2HeaderSize = 10
	id3v1Size       = 128
)

func isMP3(magic []byte, primary Tag) bool {
	if string(magic[:3]) == "ID3" {
		return true
	}
	// MPEG audio frame sync
	if magic[0] == 0xFF && magic[1]&0xE0 == 0xE0 {
		return true
	}
	return primary != nil && primary.Format() == string(tag.ID3v1)
}

// mp3Duration sums the duration of every MPEG frame between the ID3v2 header
// and an ID3v1 trailer. A truncated final frame or trailing junk ends the scan
// with the frames counted so far; any other decode error yields 0, the
// "unknown duration" sentinel.
func mp3Duration(r io.ReadSeeker, magic []byte) time.Duration {
	offset := int64(0)
	if string(magic[:3]) == "ID3" {
		header := make([]byte, id3v2HeaderSize)
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return 0
		}
		if _, err := io.ReadFull(r, header); err != nil {
			return 0
		}
		offset = id3v2HeaderSize + syncsafe(header[6:10])
		// Footer present
		if header[5]&0x10 != 0 {
			offset += id3v2HeaderSize
		}
	}

	end, err := audioEnd(r)
	if err != nil || end <= offset {
		return 0
	}
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return 0
	}

	decoder := mp3.NewDecoder(io.LimitReader(r, end-offset))
	var total time.Duration
	var frame mp3.Frame
	skipped := 0
	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return 0
		}
		total += frame.Duration()
	}
	return total
}

// audioEnd returns the offset where MPEG data stops: the start of an ID3v1
// trailer, or the end of the file
func audioEnd(r io.ReadSeeker) (int64, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if size < id3v1Size {
		return size, nil
	}
	if _, err := r.Seek(size-id3v1Size, io.SeekStart); err != nil {
		return 0, err
	}
	marker := make([]byte, 3)
	if _, err := io.ReadFull(r, marker); err != nil {
		return 0, err
	}
	if string(marker) == "TAG" {
		return size - id3v1Size, nil
	}
	return size, nil
}

func syncsafe(b []byte) int64 {
	return int64(b[0]&0x7F)<<21 | int64(b[1]&0x7F)<<14 | int64(b[2]&0x7F)<<7 | int64(b[3]&0x7F)
}
