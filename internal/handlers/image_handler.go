package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/interfaces"
)

// ImageHandler serves stored auction image metadata and bytes
type ImageHandler struct {
	images interfaces.ImageStorage
	blobs  interfaces.BlobStore
	logger arbor.ILogger
}

// NewImageHandler creates a new image handler
func NewImageHandler(storage interfaces.StorageManager, logger arbor.ILogger) *ImageHandler {
	return &ImageHandler{
		images: storage.ImageStorage(),
		blobs:  storage.BlobStore(),
		logger: logger,
	}
}

// ListHandler handles GET /api/images?sheet_id=
func (h *ImageHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	sheetID := r.URL.Query().Get("sheet_id")
	if sheetID == "" {
		WriteError(w, http.StatusBadRequest, "sheet_id is required")
		return
	}

	images, err := h.images.GetImagesBySheet(r.Context(), sheetID)
	if err != nil {
		h.logger.Error().Err(err).Str("sheet_id", sheetID).Msg("Failed to list images")
		WriteError(w, http.StatusInternalServerError, "failed to list images")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"images": images,
		"count":  len(images),
	})
}

// GetHandler handles GET /api/images/{id}
func (h *ImageHandler) GetHandler(w http.ResponseWriter, r *http.Request, imageID string) {
	image, err := h.images.GetImage(r.Context(), imageID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if image == nil {
		WriteError(w, http.StatusNotFound, "image not found")
		return
	}
	WriteJSON(w, http.StatusOK, image)
}

// ContentHandler handles GET /api/images/{id}/content, serving the
// stored bytes with the recorded MIME type.
func (h *ImageHandler) ContentHandler(w http.ResponseWriter, r *http.Request, imageID string) {
	image, err := h.images.GetImage(r.Context(), imageID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if image == nil {
		WriteError(w, http.StatusNotFound, "image not found")
		return
	}

	path, err := h.blobs.Path(image.BlobRef)
	if err != nil {
		h.logger.Error().Err(err).Str("image_id", imageID).Msg("Invalid blob reference")
		WriteError(w, http.StatusInternalServerError, "image blob unavailable")
		return
	}

	w.Header().Set("Content-Type", image.MimeType)
	http.ServeFile(w, r, path)
}
