package encoder

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// GIF encodes the frames in-process as a looping animated GIF.
// Pixels below half opacity become transparent; the rest map onto Plan 9.
type GIF struct{}

var _ Encoder = GIF{}

var (
	plan9      = color.Palette(palette.Plan9[:255])
	gifPalette = append(color.Palette{color.Transparent}, plan9...)
)

// Encode implements Encoder.
func (GIF) Encode(ctx context.Context, job Job) (Output, error) {
	if err := job.validate(); err != nil {
		return Output{}, err
	}
	anim := &gif.GIF{LoopCount: 0}
	cache := map[color.NRGBA]uint8{}
	for _, path := range job.Frames {
		if err := ctx.Err(); err != nil {
			return Output{}, err
		}
		img, err := readPNG(path)
		if err != nil {
			return Output{}, err
		}
		if b := img.Bounds(); b.Dx() != job.Size || b.Dy() != job.Size {
			scaled := image.NewRGBA(image.Rect(0, 0, job.Size, job.Size))
			xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, xdraw.Src, nil)
			img = scaled
		}
		anim.Image = append(anim.Image, quantize(img, cache))
		anim.Delay = append(anim.Delay, job.Delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalBackground)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return Output{}, fmt.Errorf("encode gif: %w", err)
	}
	return Output{Data: buf.Bytes(), Format: "gif"}, nil
}

func readPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", path, err)
	}
	return img, nil
}

func quantize(img image.Image, cache map[color.NRGBA]uint8) *image.Paletted {
	b := img.Bounds()
	out := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), gifPalette)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A < 0x80 {
				continue // index 0 is transparent
			}
			c.A = 0xff
			idx, ok := cache[c]
			if !ok {
				idx = uint8(1 + plan9.Index(c))
				cache[c] = idx
			}
			out.Pix[(y-b.Min.Y)*out.Stride+(x-b.Min.X)] = idx
		}
	}
	return out
}
