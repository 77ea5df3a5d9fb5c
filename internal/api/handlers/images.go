// images.go — обработчики загрузки и выдачи изображений и фона бокса.
// Загрузка: multipart/form-data (file, boxId, опционально type как подсказка), payload целиком в памяти.
package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	apierrors "github.com/bigkaa/boxstore/internal/api/errors"
	"github.com/bigkaa/boxstore/internal/api/middleware"
	"github.com/bigkaa/boxstore/internal/service"
)

// multipartOverhead — запас на заголовки частей и текстовые поля формы.
const multipartOverhead = 1 << 20

type uploadImageResponse struct {
	Message      string `json:"message"`
	ImageID      string `json:"imageId"`
	BoxID        string `json:"boxId"`
	DetectedMIME string `json:"detectedMime"`
}

type uploadBackgroundResponse struct {
	Message string `json:"message"`
	BoxID   string `json:"boxId"`
}

type imageMetadataResponse struct {
	ID          string    `json:"id"`
	BoxID       string    `json:"boxId"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UploadImage — POST /api/images/upload.
func (h *APIHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	params, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	result, err := h.images.StoreImage(r.Context(), params)
	if err != nil {
		h.writeServiceError(w, err, "Box not found", "upload image")
		return
	}

	writeJSON(w, http.StatusOK, uploadImageResponse{
		Message:      "Image uploaded successfully",
		ImageID:      result.ImageID,
		BoxID:        result.BoxID,
		DetectedMIME: result.DetectedMIME,
	})
}

// GetImage — GET /api/images/{id}. Отдаёт байты с сохранённым Content-Type.
func (h *APIHandler) GetImage(w http.ResponseWriter, r *http.Request, id openapi_types.UUID) {
	img, err := h.images.GetImage(r.Context(), id.String())
	if err != nil {
		h.writeServiceError(w, err, "Image not found", "get image")
		return
	}
	writeBytes(w, img.ContentType, img.Data)
}

// GetImageMetadata — GET /api/images/{id}/metadata.
func (h *APIHandler) GetImageMetadata(w http.ResponseWriter, r *http.Request, id openapi_types.UUID) {
	meta, err := h.images.GetImageMetadata(r.Context(), id.String())
	if err != nil {
		h.writeServiceError(w, err, "Image not found", "get image metadata")
		return
	}

	writeJSON(w, http.StatusOK, imageMetadataResponse{
		ID:          meta.ID,
		BoxID:       meta.BoxID,
		ContentType: meta.ContentType,
		Size:        meta.Size,
		CreatedAt:   meta.CreatedAt,
	})
}

// UploadBackground — POST /api/images/background/upload. Повторная загрузка заменяет фон.
func (h *APIHandler) UploadBackground(w http.ResponseWriter, r *http.Request) {
	params, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	bg, err := h.images.StoreBackground(r.Context(), params)
	if err != nil {
		h.writeServiceError(w, err, "Box not found", "upload background image")
		return
	}

	writeJSON(w, http.StatusOK, uploadBackgroundResponse{
		Message: "Background image uploaded successfully",
		BoxID:   bg.BoxID,
	})
}

// GetBackground — GET /api/images/background/{boxId}.
func (h *APIHandler) GetBackground(w http.ResponseWriter, r *http.Request, boxID string) {
	bg, err := h.images.GetBackground(r.Context(), boxID)
	if err != nil {
		h.writeServiceError(w, err, "Background image not found", "get background image")
		return
	}
	writeBytes(w, bg.ContentType, bg.Data)
}

// readUpload разбирает multipart-форму загрузки.
// При ошибке ответ уже записан, возвращается false.
func (h *APIHandler) readUpload(w http.ResponseWriter, r *http.Request) (service.UploadParams, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apierrors.WriteError(w, http.StatusRequestEntityTooLarge, msgFileTooLarge)
			return service.UploadParams{}, false
		}
		apierrors.BadRequest(w, "Invalid multipart form: "+err.Error())
		return service.UploadParams{}, false
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.BadRequest(w, apierrors.MsgFileRequired)
		return service.UploadParams{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		apierrors.BadRequest(w, "Failed to read uploaded file")
		return service.UploadParams{}, false
	}
	if int64(len(data)) > h.maxUploadSize {
		apierrors.WriteError(w, http.StatusRequestEntityTooLarge, msgFileTooLarge)
		return service.UploadParams{}, false
	}

	boxID := r.FormValue("boxId")
	middleware.SetBoxID(r.Context(), boxID)

	// Поле type — подсказка клиента ("image"), тип по нему не определяется.
	h.logger.Debug("Загрузка файла",
		slog.String("box_id", boxID),
		slog.String("filename", header.Filename),
		slog.String("type_hint", r.FormValue("type")),
		slog.Int("size", len(data)),
	)

	return service.UploadParams{
		Data:             data,
		OriginalFilename: header.Filename,
		DeclaredMIME:     header.Header.Get("Content-Type"),
		BoxID:            boxID,
	}, true
}

// writeBytes отдаёт бинарное содержимое с указанным типом.
func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
