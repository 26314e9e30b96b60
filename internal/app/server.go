package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/restyle/internal/extract"
	"github.com/hyperifyio/restyle/internal/template"
	"github.com/hyperifyio/restyle/internal/transform"
)

type templateList struct {
	Count      int                 `json:"count"`
	SelectedID string              `json:"selectedId,omitempty"`
	Templates  []template.Template `json:"templates"`
}

type transformRequest struct {
	Input string `json:"input"`
}

// Handler returns the HTTP surface of the App.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /templates", a.handleUpload)
	mux.HandleFunc("GET /templates", a.handleList)
	mux.HandleFunc("DELETE /templates/{id}", a.handleDelete)
	mux.HandleFunc("POST /templates/{id}/select", a.handleSelect)
	mux.HandleFunc("POST /transform", a.handleTransform)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Version())
	})
	mux.Handle("GET /metrics", a.metrics.Handler())
	return mux
}

// Serve listens on cfg.ListenAddr until ctx is canceled, then shuts down
// gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.cfg.ListenAddr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, stopping server")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return err
		}
		return nil
	}
}

func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := a.cfg.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultMaxUpload
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, errors.New(`multipart field "file" is required`))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	t, err := a.Upload(r.Context(), hdr.Filename, hdr.Header.Get("Content-Type"), data)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (a *App) handleList(w http.ResponseWriter, r *http.Request) {
	list := a.session.List()
	out := templateList{Count: len(list), Templates: list}
	if t, ok := a.session.Selected(); ok {
		out.SelectedID = t.ID
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *App) handleDelete(w http.ResponseWriter, r *http.Request) {
	a.Remove(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleSelect(w http.ResponseWriter, r *http.Request) {
	t, err := a.session.Select(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *App) handleTransform(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxBody())
	var req transformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("request body must be JSON {\"input\": \"...\"}"))
		return
	}
	out, err := a.Transform(r.Context(), req.Input)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *App) maxBody() int64 {
	if a.cfg.MaxUploadBytes > 0 {
		return a.cfg.MaxUploadBytes
	}
	return DefaultMaxUpload
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		invalid  *extract.InvalidFileError
		parse    *extract.DocumentParseError
		conflict *template.ConflictError
		notFound *template.NotFoundError
		transErr *transform.TransformError
	)
	switch {
	case errors.As(err, &invalid):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &parse):
		return http.StatusUnprocessableEntity
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, transform.ErrBusy):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrEmptyInput), errors.Is(err, ErrNoSelection):
		return http.StatusBadRequest
	case errors.As(err, &transErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
