package player

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// byteReadCloser gives a byte slice the full Read/Seek/Close surface the
// beep decoders expect.
type byteReadCloser struct {
	*bytes.Reader
}

func (byteReadCloser) Close() error { return nil }

func newByteReader(data []byte) byteReadCloser {
	return byteReadCloser{bytes.NewReader(data)}
}

// decode sniffs the container from content magic (falling back to the
// locator extension) and decodes into a beep streamer.
func decode(data []byte, locator string) (beep.StreamSeekCloser, beep.Format, error) {
	// Some taggers prepend ID3v2 to FLAC and MP3 alike; strip it before
	// sniffing so the real magic is visible.
	data = skipID3v2(data)

	switch {
	case len(data) >= 4 && string(data[:4]) == "fLaC":
		return flac.Decode(newByteReader(data))
	case len(data) >= 4 && string(data[:4]) == "OggS":
		return vorbis.Decode(newByteReader(data))
	case len(data) >= 4 && string(data[:4]) == "RIFF":
		return wav.Decode(newByteReader(data))
	}

	ext := strings.ToLower(filepath.Ext(locator))
	switch ext {
	case ".mp3", "":
		return decodeGoMP3(newByteReader(data))
	case ".flac":
		return flac.Decode(newByteReader(data))
	case ".ogg", ".oga":
		return vorbis.Decode(newByteReader(data))
	case ".wav":
		return wav.Decode(newByteReader(data))
	}

	// MP3 frame sync has no reliable magic; try it last for anything
	// with an unknown extension.
	if looksLikeMP3(data) {
		return decodeGoMP3(newByteReader(data))
	}
	return nil, beep.Format{}, fmt.Errorf("unsupported format: %s", ext)
}

// skipID3v2 returns data with any leading ID3v2 tag removed.
func skipID3v2(data []byte) []byte {
	if len(data) < 10 || string(data[0:3]) != "ID3" {
		return data
	}
	// ID3v2 size is a syncsafe integer in bytes 6-9: 7 bits per byte.
	size := int(data[6])<<21 | int(data[7])<<14 | int(data[8])<<7 | int(data[9])
	total := 10 + size
	if total > len(data) {
		return data
	}
	return data[total:]
}

// looksLikeMP3 checks for an MPEG frame sync in the first bytes.
func looksLikeMP3(data []byte) bool {
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}
