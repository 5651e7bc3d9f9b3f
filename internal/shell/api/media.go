package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/artpar/solarshop/internal/core/auth"
	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/artpar/solarshop/internal/shell/imagehost"
	"github.com/artpar/solarshop/internal/shell/media"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead is allowed on top of the file size limit for form
// boundaries and headers.
const multipartOverhead = 1 << 20

// =============================================================================
// Media Handlers
// =============================================================================

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		h.writeError(w, http.StatusServiceUnavailable, "uploads are not configured", "uploads_disabled")
		return
	}

	maxBytes := h.uploader.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.metrics.IncUpload(false)
			h.writeError(w, http.StatusRequestEntityTooLarge, media.ErrTooLarge.Error(), "file_too_large")
			return
		}
		h.writeError(w, http.StatusBadRequest, "expected a multipart form", "validation_error")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "file field is required", "validation_error")
		return
	}
	defer file.Close()

	asset, err := h.uploader.Upload(r.Context(), header.Filename, file, header.Size)
	if err != nil {
		h.metrics.IncUpload(false)
		switch {
		case errors.Is(err, media.ErrUnsupportedType):
			h.writeError(w, http.StatusUnsupportedMediaType, err.Error(), "unsupported_type")
		case errors.Is(err, media.ErrTooLarge):
			h.writeError(w, http.StatusRequestEntityTooLarge, err.Error(), "file_too_large")
		case errors.Is(err, media.ErrEmpty):
			h.writeError(w, http.StatusBadRequest, err.Error(), "file_empty")
		default:
			h.logger.Error("failed to store upload", "filename", header.Filename, "error", err)
			h.writeError(w, http.StatusInternalServerError, "failed to store upload", "internal_error")
		}
		return
	}

	if asset.IsImage() {
		h.relayImage(r, file, asset)
	}

	if err := h.store.CreateMedia(r.Context(), asset); err != nil {
		h.metrics.IncUpload(false)
		if delErr := h.uploader.Storage().Delete(r.Context(), asset.StorageKey); delErr != nil {
			h.logger.Warn("failed to remove orphaned upload", "key", asset.StorageKey, "error", delErr)
		}
		h.writeStoreError(w, err, "media", "create")
		return
	}

	h.metrics.IncUpload(true)
	h.logger.Info("media uploaded",
		"media_id", asset.ReferenceID,
		"content_type", asset.ContentType,
		"size", asset.Size,
	)
	h.writeJSON(w, http.StatusCreated, asset)
}

// relayImage copies an image to the external host. Failures are logged and
// the local copy is still returned.
func (h *Handler) relayImage(r *http.Request, file io.ReadSeeker, asset *domain.MediaAsset) {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.logger.Warn("failed to rewind upload for relay", "media_id", asset.ReferenceID, "error", err)
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, h.uploader.MaxBytes()))
	if err != nil {
		h.logger.Warn("failed to read upload for relay", "media_id", asset.ReferenceID, "error", err)
		return
	}

	img, err := h.imageHost.Upload(r.Context(), asset.Filename, data)
	if err != nil {
		if errors.Is(err, imagehost.ErrDisabled) {
			return
		}
		h.metrics.IncImageRelay(false)
		h.logger.Warn("image relay failed", "media_id", asset.ReferenceID, "error", err)
		return
	}

	h.metrics.IncImageRelay(true)
	asset.ExternalURL = img.URL
}

func (h *Handler) handleListMedia(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, auth.CanViewMedia(authOf(r))) {
		return
	}

	opts := listOptions(r)
	assets, err := h.store.ListMedia(r.Context(), opts)
	if err != nil {
		h.writeStoreError(w, err, "media", "list")
		return
	}
	if assets == nil {
		assets = []domain.MediaAsset{}
	}

	h.writeJSON(w, http.StatusOK, ListResponse{Data: assets, Count: len(assets), Limit: opts.Limit, Offset: opts.Offset})
}

func (h *Handler) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, auth.CanDeleteMedia(authOf(r))) {
		return
	}

	asset, err := h.store.GetMedia(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "media", "get")
		return
	}

	if h.uploader != nil {
		if err := h.uploader.Storage().Delete(r.Context(), asset.StorageKey); err != nil {
			h.logger.Error("failed to delete media object", "key", asset.StorageKey, "error", err)
			h.writeError(w, http.StatusInternalServerError, "failed to delete media", "internal_error")
			return
		}
	}

	if err := h.store.DeleteMedia(r.Context(), asset.ReferenceID); err != nil {
		h.writeStoreError(w, err, "media", "delete")
		return
	}

	h.logger.Info("media deleted", "media_id", asset.ReferenceID, "by", authOf(r).Subject)
	w.WriteHeader(http.StatusNoContent)
}
