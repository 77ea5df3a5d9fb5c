// texts.go — обработчики текстовых заметок бокса.
package handlers

import (
	"net/http"
	"time"

	"github.com/bigkaa/boxstore/internal/api/middleware"
	"github.com/bigkaa/boxstore/internal/domain/model"
)

// saveTextRequest — content проверяется сервисом (пустой/длинный текст).
type saveTextRequest struct {
	BoxID   string `json:"boxId" validate:"required"`
	Content string `json:"content"`
}

type saveTextResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
	BoxID   string `json:"boxId"`
	Content string `json:"content"`
}

type textResponse struct {
	ID        int64     `json:"id"`
	BoxID     string    `json:"boxId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type deleteTextResponse struct {
	Message string `json:"message"`
	TextID  int64  `json:"textId"`
}

// SaveText — POST /api/text/save.
func (h *APIHandler) SaveText(w http.ResponseWriter, r *http.Request) {
	var req saveTextRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	middleware.SetBoxID(r.Context(), req.BoxID)

	t, err := h.texts.SaveText(r.Context(), req.BoxID, req.Content)
	if err != nil {
		h.writeServiceError(w, err, "Text not found", "save text")
		return
	}

	writeJSON(w, http.StatusOK, saveTextResponse{
		Message: "Text saved successfully",
		ID:      t.ID,
		BoxID:   t.BoxID,
		Content: t.Content,
	})
}

// ListTexts — GET /api/text/box/{boxId}. Новые первыми.
func (h *APIHandler) ListTexts(w http.ResponseWriter, r *http.Request, boxID string) {
	texts, err := h.texts.ListTexts(r.Context(), boxID)
	if err != nil {
		h.writeServiceError(w, err, "Box not found", "fetch texts")
		return
	}
	writeJSON(w, http.StatusOK, textsToResponse(texts))
}

// DeleteText — DELETE /api/text/{id}.
func (h *APIHandler) DeleteText(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.texts.DeleteText(r.Context(), id); err != nil {
		h.writeServiceError(w, err, "Text not found", "delete text")
		return
	}

	writeJSON(w, http.StatusOK, deleteTextResponse{
		Message: "Text deleted successfully",
		TextID:  id,
	})
}

func textsToResponse(texts []*model.Text) []textResponse {
	resp := make([]textResponse, 0, len(texts))
	for _, t := range texts {
		resp = append(resp, textResponse{
			ID:        t.ID,
			BoxID:     t.BoxID,
			Content:   t.Content,
			CreatedAt: t.CreatedAt,
		})
	}
	return resp
}
