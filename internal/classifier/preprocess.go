package classifier

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// InputSize is the fixed resolution the model was trained on.
const InputSize = 150

// Preprocess decodes an uploaded X-ray and produces the single-channel,
// fixed-resolution, normalized intensity grid the model expects: grayscale,
// bilinear-resized to InputSize x InputSize, intensities scaled to [0,1].
func Preprocess(imageBytes []byte) ([][]float32, error) {
	src, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, &ClassificationError{Reason: "could not decode image", Err: err}
	}

	gray := image.NewGray(image.Rect(0, 0, InputSize, InputSize))
	draw.BiLinear.Scale(gray, gray.Bounds(), src, src.Bounds(), draw.Src, nil)

	pixels := make([][]float32, InputSize)
	for y := 0; y < InputSize; y++ {
		row := make([]float32, InputSize)
		for x := 0; x < InputSize; x++ {
			row[x] = float32(gray.GrayAt(x, y).Y) / 255.0
		}
		pixels[y] = row
	}
	return pixels, nil
}
