// internal/render/capture.go
package render

import (
	"bytes"
	"encoding/base64"
	"image/png"

	"go.uber.org/zap"

	"print-agent/internal/layout"
	"print-agent/internal/model"
)

// Capture renders a receipt and encodes it as a base64 PNG, the
// cross-script-safe payload for thermal printing. A failure at any stage
// returns the empty string, never an error: callers treat "" as "fall
// back to plain-text printing", so nothing here may abort the pipeline.
func Capture(data *model.ReceiptData, cfg layout.Config, logger *zap.Logger) string {
	rasterizer, err := NewRasterizer(cfg)
	if err != nil {
		logger.Warn("Receipt capture unavailable, falling back to text", zap.Error(err))
		return ""
	}

	img, err := rasterizer.Render(Build(data, cfg))
	if err != nil {
		logger.Warn("Receipt render failed, falling back to text", zap.Error(err))
		return ""
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		logger.Warn("Receipt PNG encode failed, falling back to text", zap.Error(err))
		return ""
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}
