// Package frames renders one 1080x1920 still per quote: a dark vertical
// gradient with noise texture, the quote word-wrapped in the upper half and
// the movie title underneath.
package frames

import (
	"fmt"
	"image"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"horror-quote-pipeline/config"
	"horror-quote-pipeline/types"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// colorPairs are the dark gradient endpoints, cycled by quote index.
var colorPairs = [][2][3]int{
	{{120, 0, 0}, {40, 0, 0}},    // dark red
	{{0, 0, 120}, {0, 0, 40}},    // dark blue
	{{80, 0, 100}, {30, 0, 40}},  // dark purple
	{{0, 80, 80}, {0, 30, 30}},   // dark teal
	{{100, 80, 0}, {40, 30, 0}},  // dark amber
	{{80, 80, 80}, {30, 30, 30}}, // dark gray
	{{0, 100, 0}, {0, 40, 0}},    // dark green
	{{100, 0, 100}, {40, 0, 40}}, // dark magenta
	{{100, 50, 0}, {40, 20, 0}},  // dark orange
}

// Renderer draws backgrounds and composes text frames
type Renderer struct {
	cfg       *config.Config
	quoteFace font.Face
	titleFace font.Face
}

// New creates a Renderer. The font comes from render.font_path if set,
// otherwise the bundled Go fonts — a run never fails on a missing system font.
func New(cfg *config.Config) (*Renderer, error) {
	quoteFace, titleFace, err := loadFaces(cfg)
	if err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	return &Renderer{cfg: cfg, quoteFace: quoteFace, titleFace: titleFace}, nil
}

func loadFaces(cfg *config.Config) (font.Face, font.Face, error) {
	quoteTTF := gobold.TTF
	titleTTF := goregular.TTF

	if cfg.Render.FontPath != "" {
		data, err := os.ReadFile(cfg.Render.FontPath)
		if err != nil {
			return nil, nil, fmt.Errorf("read font %s: %w", cfg.Render.FontPath, err)
		}
		quoteTTF = data
		titleTTF = data
	}

	qf, err := truetype.Parse(quoteTTF)
	if err != nil {
		return nil, nil, err
	}
	tf, err := truetype.Parse(titleTTF)
	if err != nil {
		return nil, nil, err
	}

	quoteFace := truetype.NewFace(qf, &truetype.Options{Size: cfg.Render.QuoteFontSize})
	titleFace := truetype.NewFace(tf, &truetype.Options{Size: cfg.Render.TitleFontSize})
	return quoteFace, titleFace, nil
}

// Run renders every quote to frames/frame_N.png, saving the bare background
// to images/background_N.png along the way. A failed frame degrades to a
// plain dark frame instead of aborting the run.
func (r *Renderer) Run(accepted []types.Quote) ([]string, error) {
	for _, dir := range []string{r.cfg.Paths.Images, r.cfg.Paths.Frames} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	var framePaths []string
	for i := range accepted {
		q := &accepted[i]
		bgPath := filepath.Join(r.cfg.Paths.Images, fmt.Sprintf("background_%d.png", i+1))
		framePath := filepath.Join(r.cfg.Paths.Frames, fmt.Sprintf("frame_%d.png", i+1))

		log.Printf("[frames] Rendering frame %d/%d...", i+1, len(accepted))

		// Deterministic noise per index so re-runs are reproducible
		rng := rand.New(rand.NewSource(int64(i)*42 + 7))

		bg := r.RenderBackground(i, rng)
		if err := gg.SavePNG(bgPath, bg); err != nil {
			log.Printf("[frames] Warning: save background %d: %v", i+1, err)
		}

		frame := r.ComposeFrame(bg, *q)
		if err := gg.SavePNG(framePath, frame); err != nil {
			log.Printf("[frames] Warning: frame %d failed: %v — using fallback", i+1, err)
			fallback := r.fallbackFrame(err)
			if err := gg.SavePNG(framePath, fallback); err != nil {
				return nil, fmt.Errorf("save fallback frame %d: %w", i+1, err)
			}
		}

		q.FramePath = framePath
		framePaths = append(framePaths, framePath)
	}

	log.Printf("[frames] ✅ %d frames ready", len(framePaths))
	return framePaths, nil
}

// RenderBackground draws the gradient + noise texture for one quote index.
// Pure given (index, rng).
func (r *Renderer) RenderBackground(index int, rng *rand.Rand) image.Image {
	w := r.cfg.Render.Width
	h := r.cfg.Render.Height
	c1 := colorPairs[index%len(colorPairs)][0]
	c2 := colorPairs[index%len(colorPairs)][1]

	dc := gg.NewContext(w, h)
	dc.SetLineWidth(1)

	// Row-by-row vertical gradient
	for y := 0; y < h; y++ {
		t := float64(y) / float64(h)
		dc.SetRGB255(
			lerp(c1[0], c2[0], t),
			lerp(c1[1], c2[1], t),
			lerp(c1[2], c2[2], t),
		)
		dc.DrawLine(0, float64(y), float64(w), float64(y))
		dc.Stroke()
	}

	// Translucent dark blobs for a creepy texture
	for i := 0; i < r.cfg.Render.NoiseBlobs; i++ {
		x := rng.Float64() * float64(w)
		y := rng.Float64() * float64(h)
		size := 5 + rng.Float64()*95
		dc.SetRGBA255(0, 0, 0, rng.Intn(51))
		dc.DrawEllipse(x, y, size, size)
		dc.Fill()
	}

	return dc.Image()
}

// ComposeFrame overlays the quote text and title line onto a background.
func (r *Renderer) ComposeFrame(bg image.Image, q types.Quote) image.Image {
	w := r.cfg.Render.Width
	h := r.cfg.Render.Height

	dc := gg.NewContext(w, h)
	dc.DrawImage(bg, 0, 0)

	// Dim overlay for text readability
	dc.SetRGBA255(0, 0, 0, 100)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()

	dc.SetRGB255(255, 255, 255)
	dc.SetFontFace(r.quoteFace)

	y := float64(h) / 4
	for _, line := range Wrap(q.Text, r.cfg.Render.MaxCharsPerLine) {
		dc.DrawStringAnchored(line, float64(w)/2, y, 0.5, 0.5)
		y += r.cfg.Render.LineSpacing
	}

	dc.SetFontFace(r.titleFace)
	dc.DrawStringAnchored("- "+q.Title, float64(w)/2, float64(h)*3/4, 0.5, 0.5)

	return dc.Image()
}

// fallbackFrame is a plain dark frame carrying the render error
func (r *Renderer) fallbackFrame(renderErr error) image.Image {
	w := r.cfg.Render.Width
	h := r.cfg.Render.Height

	dc := gg.NewContext(w, h)
	dc.SetRGB255(0, 0, 0)
	dc.Clear()
	dc.SetRGB255(255, 255, 255)
	dc.SetFontFace(r.titleFace)
	dc.DrawStringAnchored(fmt.Sprintf("Error: %v", renderErr), float64(w)/2, float64(h)/2, 0.5, 0.5)
	return dc.Image()
}

// Wrap greedily word-wraps text to at most max characters per line.
// A single word longer than max gets its own line.
func Wrap(text string, max int) []string {
	var lines []string
	var current []string

	for _, word := range strings.Fields(text) {
		if len(strings.Join(append(current, word), " ")) <= max {
			current = append(current, word)
			continue
		}
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
			current = []string{word}
		} else {
			lines = append(lines, word)
		}
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}

func lerp(a, b int, t float64) int {
	return a + int(float64(b-a)*t)
}
