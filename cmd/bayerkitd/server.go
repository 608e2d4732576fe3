package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/astrogo/fitsio"
	"github.com/go-chi/chi"

	dm "bayerkit/pkg/demosaic"
)

// server develops mosaics posted to it.  It holds no per-request state.
type server struct {
	cfg config
}

func newRouter(cfg config) chi.Router {
	s := &server{cfg: cfg}
	r := chi.NewRouter()
	r.Post("/demosaic", s.demosaic)
	r.Get("/methods", s.methods)
	r.Get("/version", s.version)
	return r
}

func (s *server) methods(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(dm.Methods); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *server) version(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"version": Version, "pattern": dm.Pattern})
}

// demosaic accepts a FITS or TIFF mosaic as the request body.  Query
// parameters method, format, black, white, r, g, b and crop override the
// configured defaults.
func (s *server) demosaic(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxUploadMB)<<20))
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	frame, err := decodeFrame(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p, format, err := s.pipelineFor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	img, err := p.Run(frame)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	log.Printf("%s %dx%d in %v\n", p.Reconstructor.Name(), frame.Mosaic.Cols, frame.Mosaic.Rows, time.Since(start))

	// encode before writing the header so encoder failures still get a 500
	var buf bytes.Buffer
	if format == dm.FormatFITS {
		cards := []fitsio.Card{{Name: "DMMETHOD", Value: p.Reconstructor.Name(), Comment: "demosaic method"}}
		if obj := frame.Metadata.ObjectName(); obj != "" {
			cards = append(cards, fitsio.Card{Name: "OBJECT", Value: obj})
		}
		err = dm.WriteFits(&buf, img, cards)
	} else {
		err = dm.WriteImage(&buf, img, format, s.cfg.PreviewWidth)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	hdr := w.Header()
	hdr.Set("Content-Type", dm.ContentType(format))
	if format == dm.FormatFITS {
		hdr.Set("Content-Disposition", "attachment; filename=image.fits")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *server) pipelineFor(r *http.Request) (*dm.Pipeline, string, error) {
	q := r.URL.Query()
	d := s.cfg.Defaults

	method := d.Method
	if v := q.Get("method"); v != "" {
		method = v
	}
	format := d.Format
	if v := q.Get("format"); v != "" {
		format = v
	}
	switch format {
	case dm.FormatPNG, dm.FormatTIFF, dm.FormatFITS, dm.FormatJPEG:
	case "jpg":
		format = dm.FormatJPEG
	default:
		return nil, "", fmt.Errorf("unsupported format %q", format)
	}

	rec, err := dm.NewReconstructor(method, s.cfg.Workers)
	if err != nil {
		return nil, "", err
	}
	p := &dm.Pipeline{
		Black:         d.Black,
		White:         d.White,
		Multipliers:   d.Multipliers,
		Reconstructor: rec,
		Crop:          d.Crop,
	}
	floats := []struct {
		key string
		dst *float64
	}{
		{"black", &p.Black},
		{"white", &p.White},
		{"r", &p.Multipliers.R},
		{"g", &p.Multipliers.G},
		{"b", &p.Multipliers.B},
	}
	for _, f := range floats {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, "", fmt.Errorf("parameter %s: %w", f.key, err)
		}
		*f.dst = x
	}
	if v := q.Get("crop"); v != "" {
		crop, err := strconv.ParseBool(v)
		if err != nil {
			return nil, "", fmt.Errorf("parameter crop: %w", err)
		}
		p.Crop = crop
	}
	return p, format, nil
}

// decodeFrame sniffs the FITS signature and treats anything else as TIFF.
func decodeFrame(body []byte) (*dm.RawFrame, error) {
	if bytes.HasPrefix(body, []byte("SIMPLE")) {
		return dm.ReadFitsFromBytes(body)
	}
	return dm.ReadTIFF(bytes.NewReader(body))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dm.ErrInvalidGeometry),
		errors.Is(err, dm.ErrDimensionMismatch),
		errors.Is(err, dm.ErrInvalidLevels),
		errors.Is(err, dm.ErrUnsupportedPattern):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
