package attach

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var ErrNotImage = errors.New("content is not an image")

// Decode sniffs data and decodes it when it is an image. The detected MIME
// type is returned alongside.
func Decode(data []byte) (image.Image, string, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, mt.String(), fmt.Errorf("%w (%s)", ErrNotImage, mt.String())
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, mt.String(), fmt.Errorf("decode %s: %w", mt.String(), err)
	}
	return img, mt.String(), nil
}

// Fit scales img to the largest size that fits inside w x h keeping its
// aspect ratio.
func Fit(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	iw, ih := b.Dx(), b.Dy()
	if iw <= 0 || ih <= 0 {
		return img
	}
	nw, nh := FitSize(iw, ih, w, h)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// FitSize returns the scaled dimensions of an iw x ih image inside w x h.
func FitSize(iw, ih, w, h int) (int, int) {
	w, h = max(1, w), max(1, h)
	scale := min(float64(w)/float64(iw), float64(h)/float64(ih))
	return max(1, int(float64(iw)*scale)), max(1, int(float64(ih)*scale))
}

// RenderBlocks draws img into a cols x rows terminal area using upper half
// blocks, two pixels per cell, centered.
func RenderBlocks(img image.Image, cols, rows int) string {
	cols, rows = max(1, cols), max(1, rows)
	fit := Fit(img, cols, rows*2)
	b := fit.Bounds()
	padX := (cols - b.Dx()) / 2
	padY := (rows - (b.Dy()+1)/2) / 2

	var sb strings.Builder
	for i := 0; i < padY; i++ {
		sb.WriteByte('\n')
	}
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		sb.WriteString(strings.Repeat(" ", padX))
		for x := b.Min.X; x < b.Max.X; x++ {
			top := hexColor(fit.At(x, y))
			st := lipgloss.NewStyle().Foreground(lipgloss.Color(top))
			if y+1 < b.Max.Y {
				st = st.Background(lipgloss.Color(hexColor(fit.At(x, y+1))))
			}
			sb.WriteString(st.Render("▀"))
		}
		if y+2 < b.Max.Y {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// hexColor flattens c onto black.
func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// OpenExternal hands url to the desktop's default handler.
func OpenExternal(url string) error {
	if url == "" {
		return errors.New("no URL found for this attachment")
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
