package classifier_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"pneumoscan-server/internal/classifier"
)

func encodeTestImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPreprocessShapeAndRange(t *testing.T) {
	pixels, err := classifier.Preprocess(encodeTestImage(t, 640, 480))
	require.NoError(t, err)
	require.Len(t, pixels, classifier.InputSize)
	for _, row := range pixels {
		require.Len(t, row, classifier.InputSize)
		for _, v := range row {
			require.GreaterOrEqual(t, v, float32(0))
			require.LessOrEqual(t, v, float32(1))
		}
	}
}

func TestPreprocessRejectsGarbage(t *testing.T) {
	_, err := classifier.Preprocess([]byte("definitely not an image"))
	require.Error(t, err)

	var cerr *classifier.ClassificationError
	require.ErrorAs(t, err, &cerr)
}
