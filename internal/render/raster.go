// internal/render/raster.go
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"print-agent/internal/layout"
)

// Rasterizer draws a Document into a grayscale-friendly RGBA image at
// the layout's supersampled scale. The raster is the canonical payload
// for thermal printing: glyph shaping happens here once, so scripts the
// printer's text mode would corrupt still print correctly.
type Rasterizer struct {
	cfg   layout.Config
	faces map[faceKey]font.Face
}

type faceKey struct {
	role FontRole
	bold bool
}

// NewRasterizer parses the embedded fonts and builds one face per text
// role at the scaled pixel size.
func NewRasterizer(cfg layout.Config) (*Rasterizer, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}

	r := &Rasterizer{
		cfg:   cfg,
		faces: make(map[faceKey]font.Face),
	}

	for role, size := range map[FontRole]float64{
		RoleStoreName:    cfg.Fonts.StoreName,
		RoleStoreInfo:    cfg.Fonts.StoreInfo,
		RoleSectionTitle: cfg.Fonts.SectionTitle,
		RoleNormal:       cfg.Fonts.Normal,
		RoleSmall:        cfg.Fonts.Small,
		RoleTotal:        cfg.Fonts.Total,
	} {
		for _, useBold := range []bool{false, true} {
			src := regular
			if useBold {
				src = bold
			}
			face, err := opentype.NewFace(src, &opentype.FaceOptions{
				Size:    cfg.FontSize(size),
				DPI:     72,
				Hinting: font.HintingFull,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to build %s face: %w", role, err)
			}
			r.faces[faceKey{role, useBold}] = face
		}
	}

	return r, nil
}

func (r *Rasterizer) face(role FontRole, bold bool) font.Face {
	if face, ok := r.faces[faceKey{role, bold}]; ok {
		return face
	}
	return r.faces[faceKey{RoleNormal, false}]
}

func (r *Rasterizer) lineHeight(role FontRole, face font.Face) int {
	multiplier := map[FontRole]float64{
		RoleStoreName:    r.cfg.LineHeights.StoreName,
		RoleStoreInfo:    r.cfg.LineHeights.StoreInfo,
		RoleSectionTitle: r.cfg.LineHeights.SectionTitle,
		RoleNormal:       r.cfg.LineHeights.Normal,
		RoleSmall:        r.cfg.LineHeights.Small,
		RoleTotal:        r.cfg.LineHeights.Total,
	}[role]
	if multiplier <= 0 {
		multiplier = 1
	}
	return int(math.Ceil(float64(face.Metrics().Height.Ceil()) * multiplier))
}

// wrapText breaks text into lines that fit maxWidth under face. A word
// wider than the cell stays on its own line rather than being dropped.
func wrapText(text string, maxWidth int, face font.Face) []string {
	var lines []string
	words := strings.Fields(text)
	if len(words) == 0 {
		return lines
	}

	var line string
	for _, word := range words {
		testLine := line
		if len(line) > 0 {
			testLine += " "
		}
		testLine += word

		width := font.MeasureString(face, testLine).Ceil()
		if width > maxWidth && len(line) > 0 && maxWidth > 0 {
			lines = append(lines, line)
			line = word
		} else {
			line = testLine
		}
	}

	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}

// cellLines returns the wrapped lines for a cell within a row
func (r *Rasterizer) cellLines(row Row, cell Cell) []string {
	if row.NoWrap {
		return []string{cell.Text}
	}
	return wrapText(cell.Text, cell.Width, r.face(row.Role, row.Bold))
}

// rowHeight measures a row as its tallest wrapped cell
func (r *Rasterizer) rowHeight(row Row) int {
	face := r.face(row.Role, row.Bold)
	lineH := r.lineHeight(row.Role, face)
	maxLines := 1
	for _, cell := range row.Cells {
		if n := len(r.cellLines(row, cell)); n > maxLines {
			maxLines = n
		}
	}
	return maxLines * lineH
}

// Render draws the document onto a white canvas and returns the image.
// Deterministic: identical (document, config) inputs produce identical
// pixels.
func (r *Rasterizer) Render(doc *Document) (*image.RGBA, error) {
	if doc == nil || len(doc.Rows) == 0 {
		return nil, fmt.Errorf("nothing to render")
	}

	height := doc.Padding
	for _, row := range doc.Rows {
		height += int(row.MarginTop) + r.rowHeight(row)
	}
	height += doc.Padding

	canvas := image.NewRGBA(image.Rect(0, 0, doc.Width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	y := doc.Padding
	for _, row := range doc.Rows {
		y += int(row.MarginTop)
		y += r.drawRow(canvas, row, doc.Padding, y)
	}

	return canvas, nil
}

// drawRow draws one row at vertical offset y and returns its height
func (r *Rasterizer) drawRow(canvas *image.RGBA, row Row, x0, y int) int {
	face := r.face(row.Role, row.Bold)
	lineH := r.lineHeight(row.Role, face)
	ascent := face.Metrics().Ascent.Ceil()

	maxLines := 1
	cellX := x0
	for _, cell := range row.Cells {
		lines := r.cellLines(row, cell)
		if len(lines) > maxLines {
			maxLines = len(lines)
		}

		drawer := &font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(color.Black),
			Face: face,
		}
		for i, line := range lines {
			lineWidth := font.MeasureString(face, line).Ceil()
			x := cellX
			switch cell.Align {
			case AlignCenter:
				x = cellX + (cell.Width-lineWidth)/2
			case AlignRight:
				x = cellX + cell.Width - lineWidth
			}
			if x < cellX {
				x = cellX
			}
			drawer.Dot = fixed.Point26_6{
				X: fixed.I(x),
				Y: fixed.I(y + i*lineH + ascent),
			}
			drawer.DrawString(line)
		}

		cellX += cell.Width
	}

	return maxLines * lineH
}
