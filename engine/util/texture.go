package util

import (
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Texture is decoded NRGBA pixel data, ready to be handed to a renderer.
type Texture struct {
	Name   string
	Width  int
	Height int
	Pixels []uint8
}

// NewTextureFromReader decodes png, jpeg, bmp, tiff or webp image data.
func NewTextureFromReader(r io.Reader, flipY bool) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	if !flipY {
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	} else {
		for y := 0; y < bounds.Dy(); y++ {
			for x := 0; x < bounds.Dx(); x++ {
				nrgba.Set(x, bounds.Dy()-y-1, img.At(bounds.Min.X+x, bounds.Min.Y+y))
			}
		}
	}

	return &Texture{
		Width:  nrgba.Bounds().Dx(),
		Height: nrgba.Bounds().Dy(),
		Pixels: nrgba.Pix,
	}, nil
}

// NewCheckerTexture builds a two color checkerboard with cells of cellSize pixels.
func NewCheckerTexture(name string, size, cellSize int, a, b color.NRGBA) *Texture {
	nrgba := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cellSize+y/cellSize)%2 == 0 {
				nrgba.SetNRGBA(x, y, a)
			} else {
				nrgba.SetNRGBA(x, y, b)
			}
		}
	}
	return &Texture{Name: name, Width: size, Height: size, Pixels: nrgba.Pix}
}
