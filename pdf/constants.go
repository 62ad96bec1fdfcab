package pdf

const (
	// WatermarkFontRatio is the watermark font size as a fraction of the shorter page side.
	WatermarkFontRatio = 0.05

	// WatermarkTileRatio is the tile grid step as a fraction of the shorter page side.
	WatermarkTileRatio = 0.2

	// WatermarkMaxTiles bounds the tile grid per page; the step grows past WatermarkTileRatio to stay under it.
	WatermarkMaxTiles = 150

	// WatermarkMargin is the distance in points between a corner watermark and the page edges.
	WatermarkMargin = 20.0

	// WatermarkAngle is the rotation in degrees of center and tile watermarks.
	WatermarkAngle = 45.0

	// WatermarkColor is the fill color of every watermark (mid-gray).
	WatermarkColor = "#808080"

	// WatermarkFont is one of the PDF core fonts, always available without embedding.
	WatermarkFont = "Helvetica"

	// DefaultPageWidth and DefaultPageHeight (A4 in points) stand in for pages without a usable box.
	DefaultPageWidth  = 595.28
	DefaultPageHeight = 841.89

	// MinQuality and MaxQuality bound the compression quality slider.
	MinQuality = 10
	MaxQuality = 100
)
