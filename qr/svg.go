package qr

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"strconv"

	"github.com/zeebo/errs/v2"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd">
`

// renderSVG draws one unit square per dark module in a viewBox measured in
// modules, so the output scales without resampling.
func renderSVG(bm [][]bool, opts Options) ([]byte, error) {
	var logo []byte
	if opts.Logo != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, opts.Logo); err != nil {
			return nil, errs.Wrap(err)
		}
		logo = buf.Bytes()
	}
	return writeSVG(bm, opts, logo), nil
}

func writeSVG(bm [][]bool, opts Options, logo []byte) []byte {
	dim := len(bm) + 2*opts.Border

	var b bytes.Buffer
	b.WriteString(svgHeader)
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg"`)
	if logo != nil {
		b.WriteString(` xmlns:xlink="http://www.w3.org/1999/xlink"`)
	}
	b.WriteString(` version="1.1"`)
	if opts.Size > 0 {
		fmt.Fprintf(&b, ` width="%d" height="%d"`, opts.Size, opts.Size)
	}
	fmt.Fprintf(&b, " viewBox=\"0 0 %d %d\" stroke=\"none\">\n", dim, dim)

	fmt.Fprintf(&b, "\t<rect width=\"100%%\" height=\"100%%\" fill=\"%s\"/>\n", hexColor(opts.Background))

	b.WriteString("\t<path d=\"")
	first := true
	for y, row := range bm {
		for x, dark := range row {
			if !dark {
				continue
			}
			if !first {
				b.WriteByte(' ')
			}
			first = false
			fmt.Fprintf(&b, "M%d,%dh1v1h-1z", x+opts.Border, y+opts.Border)
		}
	}
	fmt.Fprintf(&b, "\" fill=\"%s\"/>\n", hexColor(opts.Foreground))

	if logo != nil {
		side := float64(dim) / 5
		at := (float64(dim) - side) / 2
		fmt.Fprintf(&b, "\t<image x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" xlink:href=\"data:image/png;base64,%s\"/>\n",
			svgNum(at), svgNum(at), svgNum(side), svgNum(side),
			base64.StdEncoding.EncodeToString(logo))
	}

	b.WriteString("</svg>\n")
	return b.Bytes()
}

func svgNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
