// Package qr renders QR codes as SVG or PNG, with optional colors, border,
// size and a logo drawn over the center.
package qr

import (
	"errors"
	"image"
	"image/color"
	"strings"

	"github.com/skip2/go-qrcode"
	"github.com/zeebo/errs/v2"
)

type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return SVG, nil
	case SVG, PNG:
		return f, nil
	default:
		return "", errs.Errorf("unknown format: %q", s)
	}
}

func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Level is the error correction level.
type Level byte

const (
	LevelL Level = 'L'
	LevelM Level = 'M'
	LevelQ Level = 'Q'
	LevelH Level = 'H'
)

func ParseLevel(s string) (Level, error) {
	switch l := strings.ToUpper(s); l {
	case "":
		return LevelM, nil
	case "L", "M", "Q", "H":
		return Level(l[0]), nil
	default:
		return 0, errs.Errorf("unknown error correction level: %q", s)
	}
}

func (l Level) recovery() qrcode.RecoveryLevel {
	switch l {
	case LevelL:
		return qrcode.Low
	case LevelQ:
		return qrcode.High
	case LevelH:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// ErrEncode is matched by errors returned when the content cannot be
// encoded, for example because it is too long.
var ErrEncode = errors.New("qr: cannot encode content")

var (
	Black = color.NRGBA{A: 0xff}
	White = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

type Options struct {
	Format Format

	// Size is the PNG edge length in pixels. For SVG it sets the width and
	// height attributes; zero leaves the image unitless.
	Size int

	// Border is the quiet zone width in modules.
	Border int

	Level      Level
	Foreground color.NRGBA
	Background color.NRGBA

	// Logo is drawn centered over the code, covering a fifth of its width.
	// A logo raises the error correction level to H.
	Logo image.Image
}

// Defaults returns SVG output with a four module border, level M, black on
// white.
func Defaults() Options {
	return Options{
		Format:     SVG,
		Border:     4,
		Level:      LevelM,
		Foreground: Black,
		Background: White,
	}
}

type Image struct {
	Data        []byte
	ContentType string
}

// Bitmap encodes content and returns its modules without a quiet zone,
// indexed [y][x].
func Bitmap(content string, level Level) ([][]bool, error) {
	code, err := qrcode.New(content, level.recovery())
	if err != nil {
		return nil, errs.Errorf("%w: %v", ErrEncode, err)
	}
	code.DisableBorder = true
	return code.Bitmap(), nil
}

func Render(content string, opts Options) (Image, error) {
	if opts.Border < 0 {
		return Image{}, errs.Errorf("negative border: %d", opts.Border)
	}

	level := opts.Level
	if opts.Logo != nil {
		level = LevelH
	}

	bm, err := Bitmap(content, level)
	if err != nil {
		return Image{}, err
	}

	var data []byte
	switch opts.Format {
	case PNG:
		data, err = renderPNG(bm, opts)
	case SVG, "":
		data, err = renderSVG(bm, opts)
	default:
		err = errs.Errorf("unknown format: %q", opts.Format)
	}
	if err != nil {
		return Image{}, err
	}

	return Image{Data: data, ContentType: opts.Format.ContentType()}, nil
}
