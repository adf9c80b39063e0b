package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bigform/internal/logger"
)

// SuccessNotice is flashed after every accepted submission.
const SuccessNotice = "Forma muvaffaqiyatli yuborildi! Konsolga chiqdi (server tomoni)."

//go:embed templates/form.html
var templateFS embed.FS

// formPage is the data the form template renders.
type formPage struct {
	Flash string
}

func parseFormTemplate() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/form.html")
}

// formHandler serves GET and POST on the form route.
type formHandler struct {
	tmpl     *template.Template
	flash    FlashStore
	sink     SubmissionSink
	log      logger.Logger
	tracer   trace.Tracer
	maxBytes int64
}

func (h *formHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.render(w, r)
	case http.MethodPost:
		h.submit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// render writes the form with the session's pending notice, consuming it.
func (h *formHandler) render(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := SessionIDFromContext(ctx)

	var page formPage
	msg, ok, err := h.flash.Consume(ctx, sid)
	if err != nil {
		h.log.Warn("flash_consume_failed", map[string]interface{}{
			"request_id": RequestIDFromContext(ctx),
			"error":      err.Error(),
		})
	} else if ok {
		page.Flash = msg
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, page); err != nil {
		h.log.Error("template_render_failed", map[string]interface{}{
			"request_id": RequestIDFromContext(ctx),
		}, err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// submit decodes, records and acknowledges a POSTed form. Decode faults
// produce no record and no notice.
func (h *formHandler) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rid := RequestIDFromContext(ctx)

	sub, err := h.decode(ctx, w, r)
	if err != nil {
		status := http.StatusBadRequest
		result := resultBadRequest
		if errors.Is(err, ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
			result = resultTooLarge
		}
		submissionsTotal.WithLabelValues(result).Inc()
		h.log.Warn("form_decode_failed", map[string]interface{}{
			"request_id": rid,
			"status":     status,
			"error":      err.Error(),
		})
		http.Error(w, http.StatusText(status), status)
		return
	}

	if len(sub.Unknown) > 0 {
		unknownFieldsTotal.Add(float64(len(sub.Unknown)))
		h.log.Debug("form_unknown_fields", map[string]interface{}{
			"request_id": rid,
			"fields":     sub.Unknown,
		})
	}
	if sub.Resume != nil {
		resumeBytes.Observe(float64(sub.Resume.Size))
	}

	if err := h.sink.Record(ctx, sub); err != nil {
		h.log.Warn("submission_sink_failed", map[string]interface{}{
			"request_id": rid,
			"error":      err.Error(),
		})
	}

	if err := h.flash.Set(ctx, SessionIDFromContext(ctx), SuccessNotice); err != nil {
		h.log.Warn("flash_set_failed", map[string]interface{}{
			"request_id": rid,
			"error":      err.Error(),
		})
	}

	submissionsTotal.WithLabelValues(resultAccepted).Inc()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *formHandler) decode(ctx context.Context, w http.ResponseWriter, r *http.Request) (*SubmittedForm, error) {
	_, span := h.tracer.Start(ctx, "form.decode")
	defer span.End()

	start := time.Now()
	sub, err := decodeSubmission(w, r, h.maxBytes)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, err
	}

	attrs := []attribute.KeyValue{
		attribute.Int("form.scalars", len(sub.Scalars)),
		attribute.Int("form.job_rows", len(sub.Companies)),
		attribute.Bool("form.resume", sub.Resume != nil),
		attribute.Int64("form.decode_ms", time.Since(start).Milliseconds()),
	}
	if sub.Resume != nil {
		attrs = append(attrs, attribute.Int64("form.resume_size", sub.Resume.Size))
	}
	span.SetAttributes(attrs...)
	return sub, nil
}
