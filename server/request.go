package server

import (
	"bytes"
	"encoding/json"
	"image"

	"github.com/zeebo/errs/v2"

	"github.com/qrtrack/qrtrack/config"
	"github.com/qrtrack/qrtrack/qr"
)

// createRequest is the object form of a createQr body. The body may also be
// a bare JSON string holding only the data.
type createRequest struct {
	Data       string `json:"data"`
	Format     string `json:"format"`
	Size       *int   `json:"size"`
	Foreground string `json:"foreground"`
	Background string `json:"background"`
	Border     *int   `json:"border"`
	Level      string `json:"level"`
	Logo       string `json:"logo"`
}

// parseCreate decodes a createQr body into the content to encode and the
// render options, applying defaults from cfg.
func parseCreate(body []byte, cfg config.QR) (string, qr.Options, error) {
	var req createRequest

	switch trimmed := bytes.TrimSpace(body); {
	case len(trimmed) == 0:
		return "", qr.Options{}, errs.Errorf("empty body")
	case trimmed[0] == '"':
		if err := json.Unmarshal(trimmed, &req.Data); err != nil {
			return "", qr.Options{}, errs.Errorf("invalid body: %w", err)
		}
	case trimmed[0] == '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return "", qr.Options{}, errs.Errorf("invalid body: %w", err)
		}
	default:
		return "", qr.Options{}, errs.Errorf("body must be a JSON string or object")
	}

	if req.Data == "" {
		return "", qr.Options{}, errs.Errorf("data is required")
	}

	opts, err := req.options(cfg)
	return req.Data, opts, err
}

func (req createRequest) options(cfg config.QR) (opts qr.Options, err error) {
	opts = qr.Defaults()
	opts.Border = cfg.Border

	if opts.Format, err = qr.ParseFormat(req.Format); err != nil {
		return opts, err
	}
	if opts.Level, err = qr.ParseLevel(req.Level); err != nil {
		return opts, err
	}

	if opts.Format == qr.PNG {
		opts.Size = cfg.DefaultSize
	}
	if req.Size != nil {
		if *req.Size <= 0 || *req.Size > cfg.MaxSize {
			return opts, errs.Errorf("size must be in (0, %d]: %d", cfg.MaxSize, *req.Size)
		}
		opts.Size = *req.Size
	}

	if req.Border != nil {
		if *req.Border < 0 || *req.Border > 64 {
			return opts, errs.Errorf("border must be in [0, 64]: %d", *req.Border)
		}
		opts.Border = *req.Border
	}

	if req.Foreground != "" {
		if opts.Foreground, err = qr.ParseColor(req.Foreground); err != nil {
			return opts, err
		}
	}
	if req.Background != "" {
		if opts.Background, err = qr.ParseColor(req.Background); err != nil {
			return opts, err
		}
	}

	if req.Logo != "" {
		if cfg.MaxLogoBytes == 0 {
			return opts, errs.Errorf("logos are disabled")
		}
		var logo image.Image
		if logo, err = qr.DecodeLogo(req.Logo, cfg.MaxLogoBytes); err != nil {
			return opts, err
		}
		opts.Logo = logo
	}

	return opts, nil
}
