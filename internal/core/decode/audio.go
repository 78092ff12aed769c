package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"time"

	"github.com/steveyiyo/moodlens-backend/internal/apperr"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tphakala/flac"
)

// PCMAudio is an uploaded clip decoded to interleaved integer samples.
type PCMAudio struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Samples    []int
	Source     string
}

func (a *PCMAudio) Frames() int {
	if a.Channels == 0 {
		return 0
	}
	return len(a.Samples) / a.Channels
}

func (a *PCMAudio) Duration() time.Duration {
	if a.SampleRate == 0 {
		return 0
	}
	return time.Duration(a.Frames()) * time.Second / time.Duration(a.SampleRate)
}

// WAV re-encodes the clip as a PCM WAV file. The encoder needs a seekable
// writer, so the bytes go through a temp file.
func (a *PCMAudio) WAV() ([]byte, error) {
	f, err := os.CreateTemp("", "moodlens-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp wav: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	enc := wav.NewEncoder(f, a.SampleRate, a.BitDepth, a.Channels, 1)
	buf := &audio.IntBuffer{
		Data:           a.Samples,
		Format:         &audio.Format{SampleRate: a.SampleRate, NumChannels: a.Channels},
		SourceBitDepth: a.BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write to WAV encoder: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize wav: %w", err)
	}
	return os.ReadFile(f.Name())
}

// DecodeAudioUpload reads a multipart audio upload. maxBytes <= 0 disables
// the size cap.
func DecodeAudioUpload(fh *multipart.FileHeader, maxBytes int64) (*PCMAudio, error) {
	const op = "decode.audio"
	if fh == nil || fh.Filename == "" {
		return nil, apperr.Validation(op, "no selected file")
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, apperr.Validation(op, "file exceeds %d bytes", maxBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Decode(op, err, "unreadable upload")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperr.Decode(op, err, "unreadable upload")
	}
	pcm, err := DecodeAudio(data)
	if err != nil {
		return nil, err
	}
	pcm.Source = fh.Filename
	return pcm, nil
}

// DecodeAudio sniffs the container and decodes WAV or FLAC.
func DecodeAudio(data []byte) (*PCMAudio, error) {
	const op = "decode.audio"
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		pcm, err := decodeWAV(data)
		if err != nil {
			return nil, apperr.Decode(op, err, "unreadable wav container")
		}
		return pcm, nil
	case len(data) >= 4 && string(data[0:4]) == "fLaC":
		pcm, err := decodeFLAC(data)
		if err != nil {
			return nil, apperr.Decode(op, err, "unreadable flac container")
		}
		return pcm, nil
	}
	return nil, apperr.Decode(op, nil, "unsupported audio container, expected wav or flac")
}

func decodeWAV(data []byte) (*PCMAudio, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, errors.New("invalid WAV file format")
	}
	if decoder.NumChans == 0 {
		return nil, errors.New("wav has no channels")
	}
	switch decoder.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported bit depth: %d", decoder.BitDepth)
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if len(buf.Data) == 0 {
		return nil, errors.New("wav contains no samples")
	}
	return &PCMAudio{
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		BitDepth:   int(decoder.BitDepth),
		Samples:    buf.Data,
	}, nil
}

func decodeFLAC(data []byte) (*PCMAudio, error) {
	decoder, err := flac.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	width := decoder.BitsPerSample / 8
	if width < 2 || width > 4 || decoder.NChannels == 0 {
		return nil, fmt.Errorf("unsupported flac layout: %d bits, %d channels", decoder.BitsPerSample, decoder.NChannels)
	}

	var samples []int
	for {
		frame, err := decoder.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		for i := 0; i+width <= len(frame); i += width {
			samples = append(samples, sampleAt(frame[i:], width))
		}
	}
	if len(samples) == 0 {
		return nil, errors.New("flac contains no samples")
	}
	return &PCMAudio{
		SampleRate: decoder.SampleRate,
		Channels:   decoder.NChannels,
		BitDepth:   decoder.BitsPerSample,
		Samples:    samples,
	}, nil
}

// sampleAt reads one little-endian signed sample of the given byte width.
func sampleAt(b []byte, width int) int {
	switch width {
	case 2:
		return int(int16(binary.LittleEndian.Uint16(b)))
	case 3:
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if v&0x800000 != 0 {
			v |= ^0xffffff
		}
		return int(v)
	default:
		return int(int32(binary.LittleEndian.Uint32(b)))
	}
}
