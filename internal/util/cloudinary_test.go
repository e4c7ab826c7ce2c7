package util

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressImagePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	out, err := CompressImage(buf.Bytes(), "cover.PNG")
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 8, decoded.Bounds().Dx())
}

func TestCompressImagePassthroughAndErrors(t *testing.T) {
	data := []byte("RIFF....WEBP")
	out, err := CompressImage(data, "a.webp")
	require.NoError(t, err)
	assert.Equal(t, data, out)

	_, err = CompressImage(data, "a.bmp")
	assert.Error(t, err)

	_, err = CompressImage([]byte("not a jpeg"), "a.jpg")
	assert.Error(t, err)
}

func TestIsSupportedImage(t *testing.T) {
	assert.True(t, IsSupportedImage("x.JPG"))
	assert.True(t, IsSupportedImage("x.webp"))
	assert.False(t, IsSupportedImage("x.pdf"))
	assert.False(t, IsSupportedImage("noext"))
}
