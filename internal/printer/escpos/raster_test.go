package escpos

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"print-agent/internal/model"
)

// pixelBitmap is a plain 2D bit grid used to exercise packing
type pixelBitmap struct {
	pixels [][]byte
	width  int
	height int
}

func (b *pixelBitmap) Width() int          { return b.width }
func (b *pixelBitmap) Height() int         { return b.height }
func (b *pixelBitmap) GetBit(x, y int) byte { return b.pixels[y][x] }

func aRandomBitmap() *pixelBitmap {
	width, height := 1+rand.IntN(400), 1+rand.IntN(400)
	pixels := make([][]byte, height)
	for y := range height {
		row := make([]byte, width)
		for x := range width {
			row[x] = byte(rand.IntN(2))
		}
		pixels[y] = row
	}
	return &pixelBitmap{pixels, width, height}
}

func assertBitmapsIdentical(t *testing.T, b1, b2 Bitmap) {
	t.Helper()
	if b1.Width() != b2.Width() || b1.Height() != b2.Height() {
		t.Fatalf("bitmap dimensions differ: %dx%d vs %dx%d",
			b1.Width(), b1.Height(), b2.Width(), b2.Height())
	}
	for y := range b1.Height() {
		for x := range b1.Width() {
			if b1.GetBit(x, y) != b2.GetBit(x, y) {
				t.Fatalf("bit at (%d, %d) doesn't match: %v vs %v",
					x, y, b1.GetBit(x, y), b2.GetBit(x, y))
			}
		}
	}
}

func TestPackPreservesBits(t *testing.T) {
	src := &pixelBitmap{
		pixels: [][]byte{
			{1, 0, 1},
			{0, 1, 0},
		},
		width: 3, height: 2,
	}

	packed := Pack(src)
	assertBitmapsIdentical(t, src, packed)

	// width 3 packs into one byte per row, high bits first
	if packed.Stride() != 1 {
		t.Fatalf("stride = %d, want 1", packed.Stride())
	}
	if packed.Data()[0] != 0b10100000 {
		t.Errorf("first row packed as %08b", packed.Data()[0])
	}
}

func TestPackMany(t *testing.T) {
	const testCaseCount = 30

	for i := range testCaseCount {
		src := aRandomBitmap()
		t.Run(fmt.Sprintf("case %d %dx%d", i, src.width, src.height), func(t *testing.T) {
			packed := Pack(src)
			assertBitmapsIdentical(t, src, packed)
			repacked := Pack(packed)
			assertBitmapsIdentical(t, packed, repacked)
		})
	}
}

func TestRasterCommandsChunksTallBitmaps(t *testing.T) {
	src := &pixelBitmap{width: 16, height: 600}
	src.pixels = make([][]byte, src.height)
	for y := range src.height {
		src.pixels[y] = make([]byte, src.width)
	}

	commands, err := RasterCommands(Pack(src))
	if err != nil {
		t.Fatalf("raster commands: %v", err)
	}

	var headers [][]byte
	for _, cmd := range commands {
		if len(cmd) == 8 && cmd[0] == GS && cmd[1] == 0x76 {
			headers = append(headers, cmd)
		}
	}
	// 600 rows at 256 per chunk -> 3 blocks
	if len(headers) != 3 {
		t.Fatalf("expected 3 raster blocks, got %d", len(headers))
	}

	heights := 0
	for _, h := range headers {
		heights += int(h[6]) | int(h[7])<<8
	}
	if heights != 600 {
		t.Errorf("block heights sum to %d, want 600", heights)
	}
}

func TestRasterCommandsRejectsOverwideBitmap(t *testing.T) {
	packed := &PackedRaster{width: 3000, height: 1, stride: 375, data: make([]byte, 375)}
	if _, err := RasterCommands(packed); err == nil {
		t.Fatal("expected error for raster wider than the printer")
	}
}

func TestRasterFromImageMatchesDotWidth(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 120, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 120; x++ {
			if (x/10)%2 == 0 {
				src.Set(x, y, color.Black)
			} else {
				src.Set(x, y, color.White)
			}
		}
	}

	raster, err := RasterFromImage(src, 384)
	if err != nil {
		t.Fatalf("raster from image: %v", err)
	}
	if raster.Width() != 384 {
		t.Errorf("raster width = %d, want 384", raster.Width())
	}
	if raster.Stride() != 48 {
		t.Errorf("stride = %d, want 48", raster.Stride())
	}
	// aspect ratio preserved: 40 * 384/120 = 128
	if raster.Height() != 128 {
		t.Errorf("raster height = %d, want 128", raster.Height())
	}
}

func TestReceiptCommandsTextLayout(t *testing.T) {
	data := &model.ReceiptData{
		StoreName:     "MediCare Pharmacy",
		SaleID:        42,
		SaleDate:      "Aug 30, 2026 14:25",
		PaymentMethod: model.PaymentCash,
		TotalAmount:   decimal.NewFromInt(45000),
		FooterLine:    "Thank you!",
		Items: []model.ReceiptItem{
			{Name: "Paracetamol 500mg", Quantity: 2, UnitPrice: decimal.NewFromInt(5000), Total: decimal.NewFromInt(10000)},
		},
	}

	commands := ReceiptCommands(data, 384)
	joined := string(bytes.Join(commands, nil))

	for _, want := range []string{"MediCare Pharmacy", "Receipt #", "42", "Paracetamol", "45,000", "Cash", "Thank you!"} {
		if !strings.Contains(joined, want) {
			t.Errorf("text receipt missing %q", want)
		}
	}
	if !bytes.HasPrefix(commands[0], Commands.Initialize) {
		t.Error("text receipt must start with printer initialize")
	}
	if got := CharsPerLine(384); got != 32 {
		t.Errorf("chars per line = %d, want 32", got)
	}
	// customer block omitted when absent
	if strings.Contains(joined, "Customer") {
		t.Error("customer row should be omitted")
	}
}
