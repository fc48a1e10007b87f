// internal/printer/escpos/raster.go
package escpos

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/makeworld-the-better-one/dither/v2"
	"golang.org/x/image/draw"
)

const bitsPerByte = 8

// maxChunkHeight caps the dot rows per GS v 0 block; thermal printers
// stall on oversized raster payloads.
const maxChunkHeight = 256

// Bitmap is a 1-bit-per-pixel view; GetBit returns 1 for a dot to burn
type Bitmap interface {
	Width() int
	Height() int
	GetBit(x, y int) byte
}

// PackedRaster holds bitmap rows packed MSB-first into bytes, the layout
// GS v 0 consumes directly.
type PackedRaster struct {
	data   []byte
	width  int
	height int
	stride int
}

func (r *PackedRaster) Width() int  { return r.width }
func (r *PackedRaster) Height() int { return r.height }
func (r *PackedRaster) Stride() int { return r.stride }
func (r *PackedRaster) Data() []byte { return r.data }

func (r *PackedRaster) String() string {
	return fmt.Sprintf("PackedRaster(%dx%d)", r.width, r.height)
}

// GetBit returns the bit at (x, y), either 0 or 1
func (r *PackedRaster) GetBit(x, y int) byte {
	index := y*r.stride + x/bitsPerByte
	return (r.data[index] >> (bitsPerByte - 1 - x%bitsPerByte)) & 1
}

// chunk takes a horizontal slice of rows [start, start+height)
func (r *PackedRaster) chunk(start, height int) *PackedRaster {
	return &PackedRaster{
		data:   r.data[r.stride*start : r.stride*(start+height)],
		width:  r.width,
		height: height,
		stride: r.stride,
	}
}

// Pack maps any Bitmap into the packed row layout. Bits fill each byte
// from the most significant end, so a width that is not a multiple of 8
// leaves the low bits of the final byte of each row zero.
func Pack(b Bitmap) *PackedRaster {
	width, height := b.Width(), b.Height()
	stride := (width + bitsPerByte - 1) / bitsPerByte
	data := make([]byte, stride*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if b.GetBit(x, y) != 0 {
				data[y*stride+x/bitsPerByte] |= 1 << (bitsPerByte - 1 - x%bitsPerByte)
			}
		}
	}

	return &PackedRaster{data: data, width: width, height: height, stride: stride}
}

// RasterFromImage converts a full-color receipt image to a printable
// raster: scale to the head's dot width, grayscale with gamma lift,
// Floyd-Steinberg dither to black/white, then pack to 1bpp.
func RasterFromImage(img image.Image, dotsPerLine int) (*PackedRaster, error) {
	if dotsPerLine <= 0 {
		return nil, fmt.Errorf("invalid dots per line: %d", dotsPerLine)
	}
	srcWidth := img.Bounds().Dx()
	if srcWidth <= 0 || img.Bounds().Dy() <= 0 {
		return nil, fmt.Errorf("empty source image")
	}

	scaledBounds := image.Rect(0, 0, dotsPerLine, img.Bounds().Dy()*dotsPerLine/srcWidth)
	scaled := image.NewRGBA(scaledBounds)
	draw.CatmullRom.Scale(scaled, scaledBounds, img, img.Bounds(), draw.Over, nil)

	// Thermal output reads darker than a display; a 0.5 gamma lift keeps
	// mid grays from flooding to black after dithering.
	gray := image.NewGray16(scaledBounds)
	for y := scaledBounds.Min.Y; y < scaledBounds.Max.Y; y++ {
		for x := scaledBounds.Min.X; x < scaledBounds.Max.X; x++ {
			level := color.Gray16Model.Convert(scaled.At(x, y)).(color.Gray16)
			value := math.Pow(float64(level.Y)/float64(0xFFFF), 0.5)
			gray.Set(x, y, color.Gray16{Y: uint16(value * float64(0xFFFF))})
		}
	}

	palette := []color.Color{color.Black, color.White}
	ditherer := dither.NewDitherer(palette)
	ditherer.Matrix = dither.FloydSteinberg
	ditherer.Serpentine = true
	mono := ditherer.DitherPaletted(gray)

	return Pack(&palettedBitmap{image: mono}), nil
}

// palettedBitmap adapts a two-color paletted image to the Bitmap view,
// mapping the palette index closest to black to a burned dot.
type palettedBitmap struct {
	image *image.Paletted
}

func (b *palettedBitmap) Width() int  { return b.image.Rect.Dx() }
func (b *palettedBitmap) Height() int { return b.image.Rect.Dy() }

func (b *palettedBitmap) GetBit(x, y int) byte {
	idx := b.image.ColorIndexAt(b.image.Rect.Min.X+x, b.image.Rect.Min.Y+y)
	r, g, bl, _ := b.image.Palette[idx].RGBA()
	if r == 0 && g == 0 && bl == 0 {
		return 1
	}
	return 0
}

// RasterCommands expands a packed raster into the ESC/POS command
// sequence that prints it, splitting into height-capped GS v 0 blocks.
func RasterCommands(r *PackedRaster) ([][]byte, error) {
	if r.Stride() > 0xFF {
		return nil, fmt.Errorf("raster too wide for printer: %s", r)
	}

	commands := [][]byte{
		Commands.Initialize,
		Commands.AlignCenter,
	}

	for start := 0; start < r.Height(); start += maxChunkHeight {
		end := start + maxChunkHeight
		if end > r.Height() {
			end = r.Height()
		}
		slice := r.chunk(start, end-start)
		commands = append(commands,
			RasterHeader(slice.Stride(), slice.Height()),
			slice.Data(),
		)
	}

	commands = append(commands, FeedLines(4), Commands.CutFull)
	return commands, nil
}
