package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	qrDefaultSize = 256
	qrMinSize     = 128
	qrMaxSize     = 1024
)

// QRHandler renders the code printed on each table. Scanning it opens the
// table-gated menu with the table number filled in.
type QRHandler struct {
	baseURL  string
	location string
	logger   *zap.Logger
}

func NewQRHandler(baseURL, location string, logger *zap.Logger) *QRHandler {
	return &QRHandler{baseURL: strings.TrimRight(baseURL, "/"), location: location, logger: logger}
}

func (h *QRHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tables/{table}/qr.png", h.Table)
}

// TableURL is the storefront URL encoded for a table.
func (h *QRHandler) TableURL(table string) string {
	return h.baseURL + "/" + h.location + "?q=" + url.QueryEscape(table)
}

// Table writes the PNG for {table}. ?size= sets the edge in pixels.
func (h *QRHandler) Table(w http.ResponseWriter, r *http.Request) {
	table := strings.TrimSpace(chi.URLParam(r, "table"))
	if table == "" {
		writeError(w, http.StatusBadRequest, "table number required")
		return
	}

	size := qrDefaultSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < qrMinSize || n > qrMaxSize {
			writeError(w, http.StatusBadRequest, "size must be between 128 and 1024")
			return
		}
		size = n
	}

	code, err := qrcode.New(h.TableURL(table), qrcode.Medium)
	if err != nil {
		h.logger.Error("generate QR code", zap.String("table_no", table), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to generate QR code")
		return
	}
	png, err := code.PNG(size)
	if err != nil {
		h.logger.Error("encode QR code", zap.String("table_no", table), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.logger.Warn("write QR code", zap.Error(err))
	}
}
