package audio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/faiface/beep"
)

// pcmWAV builds a mono 16-bit WAV file of n silent samples.
func pcmWAV(rate, n int) []byte {
	var b bytes.Buffer
	dataSize := n * 2
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+dataSize))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&b, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&b, binary.LittleEndian, uint32(rate))
	binary.Write(&b, binary.LittleEndian, uint32(rate*2))
	binary.Write(&b, binary.LittleEndian, uint16(2))
	binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(dataSize))
	b.Write(make([]byte, dataSize))
	return b.Bytes()
}

func TestDecode_WAV(t *testing.T) {
	s, format, err := decode("audio/wav", pcmWAV(8000, 400))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	defer s.Close()

	if format.SampleRate != beep.SampleRate(8000) || format.NumChannels != 1 {
		t.Errorf("format = %+v", format)
	}
	if s.Len() != 400 {
		t.Errorf("len = %d, want 400", s.Len())
	}

	buf := make([][2]float64, 512)
	n, _ := s.Stream(buf)
	if n != 400 {
		t.Errorf("streamed %d samples, want 400", n)
	}
	// Rewinding relies on the reader staying seekable.
	if err := s.Seek(0); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if s.Position() != 0 {
		t.Errorf("position = %d after seek", s.Position())
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		contentType string
		data        []byte
	}{
		{"audio/wav", []byte("not a wav file at all, not even close")},
		{"audio/mpeg", []byte("not an mp3")},
	}
	for _, tt := range tests {
		if _, _, err := decode(tt.contentType, tt.data); err == nil {
			t.Errorf("decode(%s) accepted garbage", tt.contentType)
		}
	}
}
