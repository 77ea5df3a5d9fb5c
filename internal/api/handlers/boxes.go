// boxes.go — обработчики /api/images/boxes: создание бокса и список боксов с изображениями.
package handlers

import (
	"net/http"

	"github.com/bigkaa/boxstore/internal/api/middleware"
)

type createBoxRequest struct {
	BoxID string `json:"boxId" validate:"required"`
}

type createBoxResponse struct {
	Message string `json:"message"`
	BoxID   string `json:"boxId"`
}

// boxResponse — бокс в списке. Images всегда массив, даже пустой.
type boxResponse struct {
	BoxID  string   `json:"boxId"`
	Images []string `json:"images"`
}

// CreateBox — POST /api/images/boxes.
func (h *APIHandler) CreateBox(w http.ResponseWriter, r *http.Request) {
	var req createBoxRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	middleware.SetBoxID(r.Context(), req.BoxID)

	if err := h.boxes.CreateBox(r.Context(), req.BoxID); err != nil {
		h.writeServiceError(w, err, "Box not found", "create box")
		return
	}

	writeJSON(w, http.StatusOK, createBoxResponse{
		Message: "Box created successfully",
		BoxID:   req.BoxID,
	})
}

// ListBoxes — GET /api/images/boxes.
func (h *APIHandler) ListBoxes(w http.ResponseWriter, r *http.Request) {
	boxes, err := h.boxes.ListBoxes(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Box not found", "list boxes")
		return
	}

	resp := make([]boxResponse, 0, len(boxes))
	for _, b := range boxes {
		images := b.ImageIDs
		if images == nil {
			images = []string{}
		}
		resp = append(resp, boxResponse{BoxID: b.BoxID, Images: images})
	}
	writeJSON(w, http.StatusOK, resp)
}
