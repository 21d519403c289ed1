// Package qrsvg renders QR codes as standalone SVG documents.
package qrsvg

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Render encodes content as a QR code (medium error correction) and returns
// an SVG document of the given pixel size. The output is deterministic for a
// given (content, size) pair, which the cache layer relies on.
func Render(content string, size int) (string, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR content: %w", err)
	}

	// Bitmap includes the quiet zone.
	grid := qr.Bitmap()
	modules := len(grid)

	var b strings.Builder
	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		size, size, modules, modules)
	b.WriteString(`<rect width="100%" height="100%" fill="#ffffff"/>`)
	b.WriteString(`<path fill="#000000" d="`)
	for y, row := range grid {
		// One horizontal run per stretch of dark modules keeps the
		// document small for dense codes.
		x := 0
		for x < len(row) {
			if !row[x] {
				x++
				continue
			}
			run := 0
			for x+run < len(row) && row[x+run] {
				run++
			}
			fmt.Fprintf(&b, "M%d %dh%dv1H%dz", x, y, run, x)
			x += run
		}
	}
	b.WriteString(`"/></svg>`)

	return b.String(), nil
}
