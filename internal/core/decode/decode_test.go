package decode

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/steveyiyo/moodlens-backend/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBase64(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecodeImage(t *testing.T) {
	b64 := pngBase64(t)

	tests := []struct {
		name    string
		payload string
	}{
		{"bare base64", b64},
		{"data url", "data:image/png;base64," + b64},
		{"unpadded", strings.TrimRight(b64, "=")},
		{"wrapped lines", b64[:10] + "\n" + b64[10:]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeImage(tt.payload, 0)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
		})
	}
}

func TestDecodeImageErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		kind    error
	}{
		{"empty", "   ", apperr.ErrValidation},
		{"malformed base64", "data:image/png;base64,@@not-base64@@", apperr.ErrDecode},
		{"not an image", base64.StdEncoding.EncodeToString([]byte("hello world")), apperr.ErrDecode},
		{"empty after comma", "data:image/png;base64,", apperr.ErrDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeImage(tt.payload, 0)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

// pngHeader returns a PNG that declares w x h grayscale pixels but carries no
// image data.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := func(typ string, data []byte) {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		body := append([]byte(typ), data...)
		buf.Write(body)
		_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(body))
	}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 0 // grayscale
	chunk("IHDR", ihdr)
	chunk("IDAT", nil)
	chunk("IEND", nil)
	return buf.Bytes()
}

func TestDecodeImagePixelLimit(t *testing.T) {
	huge := base64.StdEncoding.EncodeToString(pngHeader(20000, 20000))

	_, err := DecodeImage(huge, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrDecode)
	assert.Contains(t, err.Error(), "20000x20000")

	_, err = DecodeImage(pngBase64(t), 11)
	assert.ErrorIs(t, err, apperr.ErrDecode)

	img, err := DecodeImage(pngBase64(t), 12)
	require.NoError(t, err)
	assert.Equal(t, 12, img.Bounds().Dx()*img.Bounds().Dy())
}

func TestNormalizeText(t *testing.T) {
	s, err := NormalizeText("  I am so happy today!\n")
	require.NoError(t, err)
	assert.Equal(t, "I am so happy today!", s)

	_, err = NormalizeText(" \t ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func sineClip() *PCMAudio {
	samples := make([]int, 1600)
	for i := range samples {
		samples[i] = (i%40 - 20) * 500
	}
	return &PCMAudio{SampleRate: 16000, Channels: 1, BitDepth: 16, Samples: samples}
}

func TestPCMAudioWAVDecodes(t *testing.T) {
	clip := sineClip()
	assert.Equal(t, 100, int(clip.Duration().Milliseconds()))

	data, err := clip.WAV()
	require.NoError(t, err)

	got, err := DecodeAudio(data)
	require.NoError(t, err)
	assert.Equal(t, 16000, got.SampleRate)
	assert.Equal(t, 1, got.Channels)
	assert.Equal(t, 16, got.BitDepth)
	assert.Equal(t, clip.Samples, got.Samples)
}

func TestDecodeAudioRejectsUnknownContainer(t *testing.T) {
	_, err := DecodeAudio([]byte("ID3\x04\x00 definitely an mp3"))
	assert.ErrorIs(t, err, apperr.ErrDecode)

	_, err = DecodeAudio([]byte("RIFF\x00\x00\x00\x00WAVEjunk"))
	assert.ErrorIs(t, err, apperr.ErrDecode)
}

func uploadHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestDecodeAudioUpload(t *testing.T) {
	data, err := sineClip().WAV()
	require.NoError(t, err)

	pcm, err := DecodeAudioUpload(uploadHeader(t, "clip.wav", data), 0)
	require.NoError(t, err)
	assert.Equal(t, "clip.wav", pcm.Source)
	assert.Equal(t, 1600, pcm.Frames())

	_, err = DecodeAudioUpload(uploadHeader(t, "clip.wav", data), 10)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = DecodeAudioUpload(uploadHeader(t, "notes.txt", []byte("plain text")), 0)
	assert.ErrorIs(t, err, apperr.ErrDecode)

	_, err = DecodeAudioUpload(&multipart.FileHeader{}, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSampleAtSignExtends24Bit(t *testing.T) {
	assert.Equal(t, -1, sampleAt([]byte{0xff, 0xff, 0xff}, 3))
	assert.Equal(t, 0x7fffff, sampleAt([]byte{0xff, 0xff, 0x7f}, 3))
	assert.Equal(t, -2, sampleAt([]byte{0xfe, 0xff}, 2))
}
