package server

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/robalyx/stylist/internal/photo"
	"github.com/robalyx/stylist/internal/session"
	"github.com/robalyx/stylist/internal/style"
	"github.com/robalyx/stylist/internal/weather"
	"go.uber.org/zap"
)

// multipartOverhead is the room left for form fields next to the photo.
const multipartOverhead = 1 << 20

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error  string                 `json:"error"`
	Fields style.ValidationErrors `json:"fields,omitempty"`
}

type createResponse struct {
	ID string `json:"id"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createSession starts a session and its weather lookup.
// Without coordinates the default weather applies immediately.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	latRaw, lonRaw := query.Get("lat"), query.Get("lon")

	orchestrator := s.newSession()

	if latRaw == "" && lonRaw == "" {
		orchestrator.SetWeather(weather.DefaultSummary)
	} else {
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lon, lonErr := strconv.ParseFloat(lonRaw, 64)
		if latErr != nil || lonErr != nil {
			s.writeError(w, http.StatusBadRequest, "lat and lon must both be numbers")
			return
		}
		s.startWeather(orchestrator, lat, lon)
	}

	s.sessions.Set(orchestrator.ID(), orchestrator)
	s.logger.Debug("Session created", zap.String("sessionID", orchestrator.ID()))

	s.writeJSON(w, http.StatusCreated, createResponse{ID: orchestrator.ID()})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	orchestrator, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, orchestrator.Snapshot())
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.lookup(w, r); !ok {
		return
	}
	s.sessions.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// submit reads the multipart form and runs the pipeline synchronously.
func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	orchestrator, ok := s.lookup(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, style.MaxPhotoBytes+multipartOverhead)
	if err := r.ParseMultipartForm(style.MaxPhotoBytes + multipartOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, http.StatusRequestEntityTooLarge, photo.ErrTooLarge.Error())
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	sub := session.Submission{
		Occasion: r.FormValue("occasion"),
		Genre:    r.FormValue("genre"),
		Gender:   r.FormValue("gender"),
	}

	file, header, err := r.FormFile("photo")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// Browser clients may send the photo inline as a data URI instead
		if uri := r.FormValue("photoDataUri"); uri != "" {
			if sub.Photo, sub.PhotoSize, err = s.decodeDataURI(uri); err != nil {
				s.writePhotoError(w, err)
				return
			}
		}
	case err != nil:
		s.writeError(w, http.StatusBadRequest, "invalid photo upload")
		return
	default:
		defer file.Close()

		sub.PhotoSize = int(header.Size)
		if sub.Photo, err = s.loadPhoto(file, header); err != nil {
			s.writePhotoError(w, err)
			return
		}
	}

	s.respond(w, orchestrator, orchestrator.Submit(r.Context(), sub))
}

func (s *Server) regenerate(w http.ResponseWriter, r *http.Request) {
	orchestrator, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.respond(w, orchestrator, orchestrator.Regenerate(r.Context()))
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	orchestrator, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.respond(w, orchestrator, orchestrator.Reset())
}

// loadPhoto decodes an uploaded photo, rejecting oversized files before reading them.
func (s *Server) loadPhoto(file multipart.File, header *multipart.FileHeader) (*photo.Photo, error) {
	if header.Size > style.MaxPhotoBytes {
		return nil, photo.ErrTooLarge
	}
	return photo.Load(file)
}

// decodeDataURI decodes a photo sent as a base64 data URI.
func (s *Server) decodeDataURI(uri string) (*photo.Photo, int, error) {
	_, data, err := photo.ParseDataURI(uri)
	if err != nil {
		return nil, 0, err
	}

	p, err := photo.Decode(data)
	if err != nil {
		return nil, 0, err
	}
	return p, len(data), nil
}

// respond maps a session operation result onto an HTTP response.
func (s *Server) respond(w http.ResponseWriter, orchestrator *session.Orchestrator, err error) {
	var verrs style.ValidationErrors
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, orchestrator.Snapshot())
	case errors.As(err, &verrs):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid form", Fields: verrs})
	case errors.Is(err, session.ErrBusy):
		s.writeError(w, http.StatusConflict, "an analysis step is still running, try again shortly")
	case errors.Is(err, session.ErrInvalidTransition), errors.Is(err, session.ErrWeatherUnavailable):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrNoPhoto):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		// The attempt failed; the snapshot carries the user-facing message
		s.writeJSON(w, http.StatusBadGateway, orchestrator.Snapshot())
	}
}

func (s *Server) writePhotoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, photo.ErrTooLarge):
		s.writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, photo.ErrUnsupported), errors.Is(err, photo.ErrDecode), errors.Is(err, photo.ErrEmpty),
		errors.Is(err, photo.ErrDataURI):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("Failed to read uploaded photo", zap.Error(err))
		s.writeError(w, http.StatusBadRequest, "invalid photo upload")
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Orchestrator, bool) {
	orchestrator, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return orchestrator, true
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		s.logger.Error("Failed to marshal response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
