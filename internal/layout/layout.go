// internal/layout/layout.go
package layout

import (
	"fmt"
	"math"
	"strings"
)

// SchemaVersion is the current layout schema version. The schema is a
// contract shared with the server-side receipt image generator: both
// renderers must expose the exact same field set and units so their
// output can be verified to agree metric-for-metric.
const SchemaVersion = 1

// ColumnRatios are the item-table column widths as fractions of the
// content width. Each ratio is independently tunable; their sum must not
// exceed 1.0.
type ColumnRatios struct {
	Name     float64 `json:"name" mapstructure:"name"`
	Quantity float64 `json:"quantity" mapstructure:"quantity"`
	Price    float64 `json:"price" mapstructure:"price"`
	Total    float64 `json:"total" mapstructure:"total"`
}

// Sum returns the combined fraction of content width the columns claim
func (c ColumnRatios) Sum() float64 {
	return c.Name + c.Quantity + c.Price + c.Total
}

// FontSizes are the base (unscaled) font sizes per text role, in points
type FontSizes struct {
	StoreName    float64 `json:"store_name" mapstructure:"store_name"`
	StoreInfo    float64 `json:"store_info" mapstructure:"store_info"`
	SectionTitle float64 `json:"section_title" mapstructure:"section_title"`
	Normal       float64 `json:"normal" mapstructure:"normal"`
	Small        float64 `json:"small" mapstructure:"small"`
	Total        float64 `json:"total" mapstructure:"total"`
}

// Margins are the vertical gaps between layout regions, in points
type Margins struct {
	Header  float64 `json:"header" mapstructure:"header"`
	Section float64 `json:"section" mapstructure:"section"`
	Row     float64 `json:"row" mapstructure:"row"`
	Footer  float64 `json:"footer" mapstructure:"footer"`
}

// LineHeights are the line-height multipliers per text role
type LineHeights struct {
	StoreName    float64 `json:"store_name" mapstructure:"store_name"`
	StoreInfo    float64 `json:"store_info" mapstructure:"store_info"`
	SectionTitle float64 `json:"section_title" mapstructure:"section_title"`
	Normal       float64 `json:"normal" mapstructure:"normal"`
	Small        float64 `json:"small" mapstructure:"small"`
	Total        float64 `json:"total" mapstructure:"total"`
}

// Config is the flat, fully-specified print layout configuration.
// Exactly one Config is in effect per render call; it is loaded from the
// settings store at startup and replaced only through a settings update.
type Config struct {
	Version               int          `json:"schema_version" mapstructure:"schema_version"`
	PaperWidth            float64      `json:"paper_width" mapstructure:"paper_width"`
	Scale                 float64      `json:"scale" mapstructure:"scale"`
	PaddingBase           float64      `json:"padding_base" mapstructure:"padding_base"`
	Columns               ColumnRatios `json:"columns" mapstructure:"columns"`
	Fonts                 FontSizes    `json:"fonts" mapstructure:"fonts"`
	Margins               Margins      `json:"margins" mapstructure:"margins"`
	LineHeights           LineHeights  `json:"line_heights" mapstructure:"line_heights"`
	DividerCharWidthRatio float64      `json:"divider_char_width_ratio" mapstructure:"divider_char_width_ratio"`
	DividerLetterSpacing  float64      `json:"divider_letter_spacing" mapstructure:"divider_letter_spacing"`
}

// Default returns the built-in layout used when no settings are persisted.
// Paper width is in points at 1x; Scale supersamples the raster output so
// the printer downscales a crisper image.
func Default() Config {
	return Config{
		Version:     SchemaVersion,
		PaperWidth:  384,
		Scale:       3,
		PaddingBase: 12,
		Columns: ColumnRatios{
			Name:     0.46,
			Quantity: 0.14,
			Price:    0.18,
			Total:    0.22,
		},
		Fonts: FontSizes{
			StoreName:    22,
			StoreInfo:    12,
			SectionTitle: 14,
			Normal:       12,
			Small:        10,
			Total:        16,
		},
		Margins: Margins{
			Header:  8,
			Section: 6,
			Row:     3,
			Footer:  10,
		},
		LineHeights: LineHeights{
			StoreName:    1.4,
			StoreInfo:    1.3,
			SectionTitle: 1.3,
			Normal:       1.35,
			Small:        1.3,
			Total:        1.4,
		},
		DividerCharWidthRatio: 1.2,
		DividerLetterSpacing:  1,
	}
}

// Validate checks that a configuration can drive a render without
// producing degenerate geometry.
func (c Config) Validate() error {
	if c.Version != SchemaVersion {
		return fmt.Errorf("unsupported layout schema version %d (expected %d)", c.Version, SchemaVersion)
	}
	if c.PaperWidth <= 0 {
		return fmt.Errorf("paper width must be positive")
	}
	if c.Scale <= 0 {
		return fmt.Errorf("scale must be positive")
	}
	if c.PaddingBase < 0 {
		return fmt.Errorf("padding must not be negative")
	}
	if sum := c.Columns.Sum(); sum <= 0 || sum > 1.0+1e-9 {
		return fmt.Errorf("column ratios must sum to (0, 1.0], got %.3f", sum)
	}
	for _, size := range []float64{
		c.Fonts.StoreName, c.Fonts.StoreInfo, c.Fonts.SectionTitle,
		c.Fonts.Normal, c.Fonts.Small, c.Fonts.Total,
	} {
		if size <= 0 {
			return fmt.Errorf("font sizes must be positive")
		}
	}
	if c.DividerCharWidthRatio <= 0 {
		return fmt.Errorf("divider char width ratio must be positive")
	}
	if c.ContentWidth() <= 0 {
		return fmt.Errorf("padding leaves no content width")
	}
	return nil
}

// ScaledWidth is the full raster width in pixels at the configured scale
func (c Config) ScaledWidth() float64 {
	return c.PaperWidth * c.Scale
}

// ContentWidth is the printable width between the horizontal paddings
func (c Config) ContentWidth() float64 {
	return c.ScaledWidth() - 2*c.PaddingBase*c.Scale
}

// ColumnWidths are the item-table column widths in whole pixels
type ColumnWidths struct {
	Name     int
	Quantity int
	Price    int
	Total    int
}

// Sum returns the combined column width
func (w ColumnWidths) Sum() int {
	return w.Name + w.Quantity + w.Price + w.Total
}

// ColumnWidths computes the pixel width of each item-table column as
// floor(contentWidth x ratio). Flooring guarantees the columns never
// exceed the content width.
func (c Config) ColumnWidths() ColumnWidths {
	content := c.ContentWidth()
	return ColumnWidths{
		Name:     int(math.Floor(content * c.Columns.Name)),
		Quantity: int(math.Floor(content * c.Columns.Quantity)),
		Price:    int(math.Floor(content * c.Columns.Price)),
		Total:    int(math.Floor(content * c.Columns.Total)),
	}
}

// DividerPairCount is how many "<char><space>" pairs fill the content
// width at the small font size. The divider is computed, never
// hard-coded, so it spans the receipt for any paper width or scale.
func (c Config) DividerPairCount() int {
	unit := c.Fonts.Small * c.DividerCharWidthRatio
	if unit <= 0 {
		return 0
	}
	return int(math.Floor(c.ContentWidth() / unit))
}

// Divider builds the horizontal rule line with the trailing space trimmed
func (c Config) Divider() string {
	n := c.DividerPairCount()
	if n <= 0 {
		return ""
	}
	return strings.TrimRight(strings.Repeat("- ", n), " ")
}

// FontSize returns the scaled pixel size for a text role
func (c Config) FontSize(base float64) float64 {
	return base * c.Scale
}
