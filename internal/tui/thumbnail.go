package tui

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

// renderThumbnail draws img with upper half blocks: each cell carries two
// vertical pixels, the top as foreground and the bottom as background.
func renderThumbnail(data []byte, width int) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode preview: %w", err)
	}
	if width <= 0 {
		return "", nil
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return "", nil
	}
	height := uint(float64(width) * float64(bounds.Dy()) / float64(bounds.Dx()))
	if height < 2 {
		height = 2
	}
	small := resize.Resize(uint(width), height, img, resize.Bilinear)
	sb := small.Bounds()

	var b strings.Builder
	for y := sb.Min.Y; y < sb.Max.Y; y += 2 {
		for x := sb.Min.X; x < sb.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(hexColor(small.At(x, y)))
			if y+1 < sb.Max.Y {
				style = style.Background(hexColor(small.At(x, y+1)))
			}
			b.WriteString(style.Render("▀"))
		}
		if y+2 < sb.Max.Y {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8))
}
