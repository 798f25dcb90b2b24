package imagestore

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
)

const placeholderSize = 64

// Placeholder 生成一张浅灰色的 JPEG，作为默认图片
func Placeholder() ([]byte, error) {
	img := image.NewGray(image.Rect(0, 0, placeholderSize, placeholderSize))
	for y := 0; y < placeholderSize; y++ {
		for x := 0; x < placeholderSize; x++ {
			img.SetGray(x, y, color.Gray{Y: 0xdd})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("failed to encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}
