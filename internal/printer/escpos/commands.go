// internal/printer/escpos/commands.go
package escpos

// Control bytes used by the ESC/POS command set
const (
	ESC byte = 0x1B
	GS  byte = 0x1D
	LF  byte = 0x0A
)

// Commands contains the fixed ESC/POS command sequences the agent uses
var Commands = struct {
	Initialize     []byte
	AlignLeft      []byte
	AlignCenter    []byte
	AlignRight     []byte
	BoldOn         []byte
	BoldOff        []byte
	SizeNormal     []byte
	SizeDoubleBoth []byte
	CutFull        []byte
	LineFeed       []byte
}{
	Initialize:     []byte{ESC, 0x40},       // ESC @
	AlignLeft:      []byte{ESC, 0x61, 0x00}, // ESC a 0
	AlignCenter:    []byte{ESC, 0x61, 0x01}, // ESC a 1
	AlignRight:     []byte{ESC, 0x61, 0x02}, // ESC a 2
	BoldOn:         []byte{ESC, 0x45, 0x01}, // ESC E 1
	BoldOff:        []byte{ESC, 0x45, 0x00}, // ESC E 0
	SizeNormal:     []byte{GS, 0x21, 0x00},  // GS ! 0
	SizeDoubleBoth: []byte{GS, 0x21, 0x30},  // GS ! 48
	CutFull:        []byte{GS, 0x56, 0x00},  // GS V 0
	LineFeed:       []byte{LF},
}

// FeedLines feeds n blank lines (ESC d n)
func FeedLines(n byte) []byte {
	return []byte{ESC, 0x64, n}
}

// RasterHeader frames one raster block in GS v 0 mode: widthBytes is the
// packed stride, heightDots the number of dot rows in the block.
func RasterHeader(widthBytes int, heightDots int) []byte {
	return []byte{
		GS, 0x76, 0x30, 0x00,
		byte(widthBytes & 0xFF), byte(widthBytes >> 8),
		byte(heightDots & 0xFF), byte(heightDots >> 8),
	}
}
