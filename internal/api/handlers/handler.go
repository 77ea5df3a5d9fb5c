// handler.go — основной обработчик API, реализующий ServerInterface.
// Объединяет health, документ OpenAPI и бизнес-обработчики боксов, изображений, текстов и треков.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	apierrors "github.com/bigkaa/boxstore/internal/api/errors"
	"github.com/bigkaa/boxstore/internal/service"
)

// validate — общий экземпляр валидатора DTO (потокобезопасен, кэширует разбор структур).
var validate = validator.New(validator.WithRequiredStructEnabled())

// APIHandler — основной обработчик API boxstore.
type APIHandler struct {
	health  *HealthHandler
	openapi []byte

	boxes  *service.BoxService
	images *service.ImageService
	texts  *service.TextService
	tracks *service.TrackService

	maxUploadSize int64
	logger        *slog.Logger
}

// Services — сервисы, которым делегируют обработчики.
type Services struct {
	Boxes  *service.BoxService
	Images *service.ImageService
	Texts  *service.TextService
	Tracks *service.TrackService
}

// NewAPIHandler создаёт основной обработчик API.
// openapiDoc — JSON-представление контракта для GET /api/openapi.json.
func NewAPIHandler(
	health *HealthHandler,
	openapiDoc []byte,
	svc Services,
	maxUploadSize int64,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:        health,
		openapi:       openapiDoc,
		boxes:         svc.Boxes,
		images:        svc.Images,
		texts:         svc.Texts,
		tracks:        svc.Tracks,
		maxUploadSize: maxUploadSize,
		logger:        logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// GetOpenAPI отдаёт контракт API.
func (h *APIHandler) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.openapi)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// messageResponse — ответ с одним сообщением.
type messageResponse struct {
	Message string `json:"message"`
}

// decodeJSON декодирует тело запроса и валидирует DTO.
// При ошибке ответ уже записан, возвращается false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierrors.BadRequest(w, apierrors.MsgInvalidJSON)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		apierrors.BadRequest(w, validationMessage(err))
		return false
	}
	return true
}

// validationMessage возвращает сообщение для первого невалидного поля DTO.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	switch verrs[0].Field() {
	case "BoxID":
		return apierrors.MsgBoxIDRequired
	case "SpotifyID":
		return msgSpotifyIDRequired
	default:
		return "Invalid field '" + verrs[0].Field() + "'"
	}
}

const (
	msgSpotifyIDRequired = "Missing 'spotifyId' field in request body"
	msgQueryRequired     = "Missing 'query' parameter"
	msgLimitOutOfRange   = "Parameter 'limit' must be between 1 and 50"
	msgBoxExists         = "Box already exists"
	msgFileTooLarge      = "Uploaded file exceeds size limit"
)

// writeServiceError переводит ошибку сервисного слоя в HTTP-ответ.
// notFoundMsg — сообщение для ErrNotFound, action — описание операции для лога.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, err error, notFoundMsg, action string) {
	var mediaErr *service.MediaError
	switch {
	case errors.As(err, &mediaErr):
		if errors.Is(mediaErr, service.ErrWrongEndpoint) {
			apierrors.WriteMediaError(w, http.StatusBadRequest, apierrors.MsgWrongEndpoint, mediaErr.DetectedMIME)
			return
		}
		apierrors.WriteMediaError(w, http.StatusUnsupportedMediaType, apierrors.MsgUnsupportedMedia, mediaErr.DetectedMIME)
	case errors.Is(err, service.ErrBoxIDRequired):
		apierrors.BadRequest(w, apierrors.MsgBoxIDRequired)
	case errors.Is(err, service.ErrTextEmpty):
		apierrors.BadRequest(w, apierrors.MsgTextEmpty)
	case errors.Is(err, service.ErrTextTooLong):
		apierrors.BadRequest(w, apierrors.MsgTextTooLong)
	case errors.Is(err, service.ErrQueryRequired):
		apierrors.BadRequest(w, msgQueryRequired)
	case errors.Is(err, service.ErrLimitOutOfRange):
		apierrors.BadRequest(w, msgLimitOutOfRange)
	case errors.Is(err, service.ErrTrackIDRequired):
		apierrors.BadRequest(w, msgSpotifyIDRequired)
	case errors.Is(err, service.ErrInvalidInput):
		apierrors.BadRequest(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, notFoundMsg)
	case errors.Is(err, service.ErrConflict):
		apierrors.Conflict(w, msgBoxExists)
	default:
		h.logger.Error("Ошибка обработки запроса",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Failed to "+action)
	}
}
