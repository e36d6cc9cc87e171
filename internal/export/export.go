package export

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/engine"
	"github.com/inamate/whiteboard/backend-go/internal/geom"
)

var (
	ErrEmptyBoard  = errors.New("board has no layers")
	ErrInvalidSize = errors.New("invalid export size")
)

const maxPixels = 8192

// Options controls a board export.
type Options struct {
	// Padding is added around the layers' bounding box.
	Padding float64
	// PencilSize is used for path layers without their own size.
	PencilSize float64
	// Background fills the whole image when set.
	Background *document.Color
}

// Result is an exported board.
type Result struct {
	SVG    []byte
	Bounds geom.Rect
}

// BoardSVG renders every layer of board into a standalone SVG document
// framing the layers' bounding box.
func BoardSVG(board *document.Board, opts Options) (Result, error) {
	bounds, ok := board.SelectionBounds(board.LayerIDs)
	if !ok {
		return Result{}, ErrEmptyBoard
	}
	bounds = geom.Rect{
		X:      bounds.X - opts.Padding,
		Y:      bounds.Y - opts.Padding,
		Width:  bounds.Width + 2*opts.Padding,
		Height: bounds.Height + 2*opts.Padding,
	}

	commands := engine.CompileDrawCommands(engine.BuildScene(board, nil, opts.PencilSize))
	return Result{SVG: SVG(commands, bounds, opts.Background), Bounds: bounds}, nil
}

// SVG writes draw commands as an SVG document whose view box is bounds.
// Overlay commands (selection, net, cursor) are skipped.
func SVG(commands []engine.DrawCommand, bounds geom.Rect, background *document.Color) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%s" height="%s">`,
		num(bounds.X), num(bounds.Y), num(bounds.Width), num(bounds.Height), num(bounds.Width), num(bounds.Height))
	b.WriteByte('\n')

	if background != nil {
		fmt.Fprintf(&b, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`,
			num(bounds.X), num(bounds.Y), num(bounds.Width), num(bounds.Height), background.CSS())
		b.WriteByte('\n')
	}

	for _, cmd := range commands {
		writeCommand(&b, cmd)
	}

	b.WriteString("</svg>\n")
	return b.Bytes()
}

func writeCommand(b *bytes.Buffer, cmd engine.DrawCommand) {
	tf := transformAttr(cmd.Transform)

	switch cmd.Op {
	case "path":
		d := cmd.D
		if d == "" {
			d = pathData(cmd.Path)
		}
		if d == "" {
			return
		}
		fmt.Fprintf(b, `<path%s d="%s" fill="%s"/>`, tf, d, fillOr(cmd.Fill, "none"))

	case "draft":
		if cmd.D == "" {
			return
		}
		fmt.Fprintf(b, `<path d="%s" fill="%s"/>`, cmd.D, fillOr(cmd.Fill, "#000000"))

	case "note":
		fmt.Fprintf(b, `<g%s><rect width="%s" height="%s" fill="%s"/>`,
			tf, num(cmd.Width), num(cmd.Height), fillOr(cmd.Fill, "#000000"))
		writeText(b, cmd, "")
		b.WriteString("</g>")

	case "text":
		writeText(b, cmd, tf)

	case "image":
		fmt.Fprintf(b, `<image%s width="%s" height="%s" href="%s"/>`,
			tf, num(cmd.Width), num(cmd.Height), escape(cmd.Href))

	default:
		return
	}
	b.WriteByte('\n')
}

// writeText centers the text in the layer box.
func writeText(b *bytes.Buffer, cmd engine.DrawCommand, tf string) {
	if cmd.Text == "" {
		return
	}
	fmt.Fprintf(b, `<text%s x="%s" y="%s" font-size="%s" fill="%s" text-anchor="middle" dominant-baseline="middle">%s</text>`,
		tf, num(cmd.Width/2), num(cmd.Height/2), num(cmd.FontSize), fillOr(cmd.TextColor, "#000000"), escape(cmd.Text))
}

func transformAttr(m []float64) string {
	if len(m) != 6 {
		return ""
	}
	parts := make([]string, len(m))
	for i, v := range m {
		parts[i] = num(v)
	}
	return ` transform="matrix(` + strings.Join(parts, " ") + `)"`
}

// pathData converts Canvas2D style path commands to SVG path data.
func pathData(cmds []engine.PathCommand) string {
	var b strings.Builder
	for _, cmd := range cmds {
		if len(cmd) == 0 {
			continue
		}
		op, ok := cmd[0].(string)
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(op)
		for _, arg := range cmd[1:] {
			if v, ok := arg.(float64); ok {
				b.WriteByte(' ')
				b.WriteString(num(v))
			}
		}
	}
	return b.String()
}

func fillOr(fill, fallback string) string {
	if fill == "" {
		return fallback
	}
	return fill
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func num(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PNG rasterizes an SVG document at width x height pixels. Text and images
// are not rasterized.
func PNG(svg []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 || width > maxPixels || height > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	slog.Debug("rasterized board", "width", width, "height", height, "bytes", buf.Len())
	return buf.Bytes(), nil
}

// BoardPNG exports board as a PNG scaled so its bounds map to pixels at
// the given scale.
func BoardPNG(board *document.Board, opts Options, scale float64) ([]byte, error) {
	res, err := BoardSVG(board, opts)
	if err != nil {
		return nil, err
	}
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Ceil(res.Bounds.Width * scale))
	h := int(math.Ceil(res.Bounds.Height * scale))
	return PNG(res.SVG, w, h)
}
