// Package texture decodes images for use as mapper textures.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types.
const (
	TGATypeUncompressed = 2
	TGATypeRLE          = 10
)

var ErrTruncated = errors.New("tga: data truncated")

type tgaReader struct {
	data []byte
	pos  int
	bpp  int
}

func (r *tgaReader) pixel() (color.RGBA, error) {
	if r.pos+r.bpp > len(r.data) {
		return color.RGBA{}, ErrTruncated
	}
	p := r.data[r.pos : r.pos+r.bpp]
	r.pos += r.bpp
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if r.bpp == 4 {
		c.A = p[3]
	}
	return c, nil
}

// DecodeTGA decodes uncompressed or RLE true-color TGA data with 24 or
// 32 bits per pixel.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < 18 {
		return nil, ErrTruncated
	}
	idLength := int(data[0])
	colorMapType, imageType := data[1], data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bits := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("tga: color-mapped images not supported")
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("tga: unsupported image type %d", imageType)
	}
	if bits != 24 && bits != 32 {
		return nil, fmt.Errorf("tga: unsupported bit depth %d", bits)
	}
	if 18+idLength > len(data) {
		return nil, ErrTruncated
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	r := &tgaReader{data: data[18+idLength:], bpp: bits / 8}
	put := func(i int, c color.RGBA) {
		x, y := i%width, i/width
		if !topToBottom {
			y = height - 1 - y
		}
		img.SetRGBA(x, y, c)
	}

	total := width * height
	for i := 0; i < total; {
		if imageType == TGATypeUncompressed {
			c, err := r.pixel()
			if err != nil {
				return nil, err
			}
			put(i, c)
			i++
			continue
		}

		if r.pos >= len(r.data) {
			return nil, ErrTruncated
		}
		header := r.data[r.pos]
		r.pos++
		run := int(header&0x7f) + 1
		repeat := header&0x80 != 0

		var c color.RGBA
		var err error
		for k := 0; k < run && i < total; k++ {
			if k == 0 || !repeat {
				if c, err = r.pixel(); err != nil {
					return nil, err
				}
			}
			put(i, c)
			i++
		}
	}
	return img, nil
}
