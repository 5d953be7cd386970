package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// maxUploadBytes bounds a single image upload.
const maxUploadBytes = 5 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// upload accepts one multipart image under the "image" field and returns the
// public path it was stored at. The stored name is generated; the client's
// filename is only used for logging.
func (h *handler) upload(w http.ResponseWriter, r *http.Request) {
	if h.cfg.UploadDir == "" {
		writeError(w, http.StatusNotImplemented, fmt.Errorf("uploads are disabled"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload too large or malformed: %w", err))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("image field is required"))
		return
	}
	defer file.Close()

	// Sniff the real content type; the client-declared header is not
	// trusted.
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}
	contentType := http.DetectContentType(head[:n])
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		writeError(w, http.StatusUnsupportedMediaType, fmt.Errorf("unsupported image type %s", contentType))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("prepare upload dir: %w", err))
		return
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(h.cfg.UploadDir, name))
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("store upload: %w", err))
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("store upload: %w", err))
		return
	}

	h.log.WithField("file", name).
		WithField("original", strings.TrimSpace(header.Filename)).
		WithField("size", header.Size).
		Info("image uploaded")
	writeJSON(w, http.StatusCreated, map[string]string{"url": "/uploads/" + name})
}
