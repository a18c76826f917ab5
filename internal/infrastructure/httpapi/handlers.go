package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/infrastructure/export"
)

// NoCodeMessage is returned when an upload holds no QR code.
const NoCodeMessage = "未偵測到 QR Code"

type scanResponse struct {
	Message  string               `json:"message,omitempty"`
	Payloads []string             `json:"payloads"`
	Outcomes []domain.ScanOutcome `json:"outcomes"`
}

type historyResponse struct {
	Session string              `json:"session"`
	Records []domain.ScanRecord `json:"records"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimSpace(r.URL.Query().Get("url"))
	if target == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing url parameter"))
		return
	}
	writeText(w, http.StatusOK, s.Scanner.Lookup(r.Context(), target).Label())
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if s.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, errors.New("multipart field \"image\" is required"))
		return
	}
	defer file.Close()

	result, err := s.Scanner.ScanImage(r.Context(), sessionFrom(r), file)
	resp := scanResponse{Payloads: nonNil(result.Payloads), Outcomes: result.Outcomes}
	if resp.Outcomes == nil {
		resp.Outcomes = []domain.ScanOutcome{}
	}
	switch {
	case errors.Is(err, domain.ErrDecodeEmpty):
		resp.Message = NoCodeMessage
		writeJSON(w, http.StatusOK, resp)
	case err != nil:
		writeError(w, statusFor(err), err)
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	text, err := captureText(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	outcome, err := s.Scanner.Process(r.Context(), sessionFrom(r), text, domain.FlowCapture)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	records, err := sess.Snapshot()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if records == nil {
		records = []domain.ScanRecord{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Session: sess.ID, Records: records})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	layout := r.URL.Query().Get("layout")
	if layout == "" {
		layout = s.Layout
	}
	if layout == "" {
		layout = domain.LayoutHistory
	}
	if !export.ValidLayout(layout) {
		writeError(w, http.StatusBadRequest, errors.New("layout must be history or capture"))
		return
	}
	records, err := sessionFrom(r).Snapshot()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName(layout)}))
	if err := s.Exporter.Export(w, records, layout); err != nil {
		s.logger().Error("csv export failed", err, map[string]interface{}{"layout": layout})
	}
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if err := s.Sessions.End(c.Value); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			s.logger().Warn("ending session failed", map[string]interface{}{"error": err.Error()})
		}
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func captureText(r *http.Request) (string, error) {
	var text string
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&body); err != nil {
			return "", errors.New("invalid JSON body")
		}
		text = body.Text
	} else {
		text = r.FormValue("text")
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("text is required")
	}
	return text, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnsupportedImage):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrDecodeEmpty):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionClosed), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeText(w http.ResponseWriter, code int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, text)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
