package telemetry

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// heatmapPalette is cycled by species id. Loosely the tab20-style colors
// the reference plots used.
var heatmapPalette = []color.RGBA{
	{R: 0x31, G: 0x82, B: 0xbd, A: 0xff},
	{R: 0xe6, G: 0x55, B: 0x0d, A: 0xff},
	{R: 0x31, G: 0xa3, B: 0x54, A: 0xff},
	{R: 0x75, G: 0x6b, B: 0xb1, A: 0xff},
	{R: 0x63, G: 0x63, B: 0x63, A: 0xff},
	{R: 0x6b, G: 0xae, B: 0xd6, A: 0xff},
	{R: 0xfd, G: 0x8d, B: 0x3c, A: 0xff},
	{R: 0x74, G: 0xc4, B: 0x76, A: 0xff},
	{R: 0x9e, G: 0x9a, B: 0xc8, A: 0xff},
	{R: 0x96, G: 0x96, B: 0x96, A: 0xff},
	{R: 0x9e, G: 0xca, B: 0xe1, A: 0xff},
	{R: 0xfd, G: 0xae, B: 0x6b, A: 0xff},
	{R: 0xa1, G: 0xd9, B: 0x9b, A: 0xff},
	{R: 0xbc, G: 0xbd, B: 0xdc, A: 0xff},
	{R: 0xbd, G: 0xbd, B: 0xbd, A: 0xff},
	{R: 0xc6, G: 0xdb, B: 0xef, A: 0xff},
	{R: 0xfd, G: 0xd0, B: 0xa2, A: 0xff},
	{R: 0xc7, G: 0xe9, B: 0xc0, A: 0xff},
	{R: 0xda, G: 0xda, B: 0xeb, A: 0xff},
	{R: 0xd9, G: 0xd9, B: 0xd9, A: 0xff},
}

// emptyCell marks cells with no resident adult.
var emptyCell = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}

// Heatmap renders a resident-species grid (species id per cell, -1 for
// none) as an image with scale pixels per cell.
func Heatmap(residents [][]int, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	h := len(residents)
	w := 0
	if h > 0 {
		w = len(residents[0])
	}
	img := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	for x := 0; x < h; x++ {
		for y := 0; y < w; y++ {
			c := emptyCell
			if id := residents[x][y]; id >= 0 {
				c = heatmapPalette[id%len(heatmapPalette)]
			}
			for i := 0; i < scale; i++ {
				for j := 0; j < scale; j++ {
					img.SetRGBA(y*scale+j, x*scale+i, c)
				}
			}
		}
	}
	return img
}

// WriteHeatmapPNG renders residents and writes the image to path.
func WriteHeatmapPNG(path string, residents [][]int, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating heatmap: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, Heatmap(residents, scale)); err != nil {
		return fmt.Errorf("encoding heatmap: %w", err)
	}
	return nil
}
