package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/stepgraph/pkg/buildinfo"
	apperrors "github.com/matzehuels/stepgraph/pkg/errors"
	"github.com/matzehuels/stepgraph/pkg/observability"
	"github.com/matzehuels/stepgraph/pkg/pipeline"
)

var (
	errNotFound         = apperrors.New(apperrors.ErrCodeNotFound, "not found")
	errMethodNotAllowed = apperrors.New(apperrors.ErrCodeUnsupported, "method not allowed")
)

// contentTypes maps output formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
}

// errorResponse is the body of every error response.
type errorResponse struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// handleLayout runs the pipeline on the request body.
//
// Query parameters:
//
//	format       json (default), svg, dot, png or pdf
//	type         chart (default) or nodelink
//	base_width, base_height, margin_x, margin_y   layout sizes
//	detailed, tooltips, ports                     render flags
//	scale        PNG scale factor
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.optionsFromQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge,
				apperrors.New(apperrors.ErrCodeInvalidInput, "graph payload exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeError(w, r, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read body"))
		return
	}

	result, err := s.runner.Execute(r.Context(), payload, opts)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	format := opts.Formats[0]
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Graph-Hash", result.GraphHash)
	w.Header().Set("X-Cache", cacheStatus(result.CacheInfo))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// optionsFromQuery builds pipeline options from the server defaults and the
// query string. Exactly one output format is produced per request.
func (s *Server) optionsFromQuery(q url.Values) (pipeline.Options, error) {
	opts := s.defaults
	opts.Logger = nil
	opts.Formats = []string{pipeline.FormatJSON}

	if f := q.Get("format"); f != "" {
		opts.Formats = []string{strings.ToLower(f)}
	}
	if t := q.Get("type"); t != "" {
		opts.VizType = strings.ToLower(t)
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"base_width", &opts.BaseWidth},
		{"base_height", &opts.BaseHeight},
		{"margin_x", &opts.MarginX},
		{"margin_y", &opts.MarginY},
		{"scale", &opts.Scale},
	}
	for _, f := range floats {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "%s must be a number, got %q", f.name, v)
		}
		*f.dst = n
	}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"detailed", &opts.Detailed},
		{"tooltips", &opts.Tooltips},
		{"ports", &opts.Ports},
		{"refresh", &opts.Refresh},
	}
	for _, f := range flags {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "%s must be a boolean, got %q", f.name, v)
		}
		*f.dst = b
	}

	// Validate a copy so the runner still fills in its own logger.
	check := opts
	if err := check.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

// statusFor maps a pipeline error to an HTTP status.
func statusFor(err error) int {
	if apperrors.IsGraphError(err) {
		return http.StatusBadRequest
	}
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidFormat,
		apperrors.ErrCodeInvalidVizType, apperrors.ErrCodeUnsupported:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func cacheStatus(info pipeline.CacheInfo) string {
	switch {
	case info.ChartHit && info.RenderHit:
		return "hit"
	case info.ChartHit:
		return "partial"
	}
	return "miss"
}

// writeError writes err as a JSON error body. Internal errors are logged and
// answered with a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	resp := errorResponse{Code: apperrors.GetCode(err), Message: apperrors.UserMessage(err)}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err, "request_id", RequestIDFrom(r.Context()))
		resp = errorResponse{Code: apperrors.ErrCodeInternal, Message: "internal error"}
	}
	if resp.Code == "" {
		resp.Code = apperrors.ErrCodeInvalidInput
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
