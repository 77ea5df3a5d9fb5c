// routes.go — таблица маршрутов API и обёртки, связывающие параметры пути и запроса.
// Параметры разбираются через oapi-codegen/runtime по тем же правилам, что и в openapi.yaml.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	apierrors "github.com/bigkaa/boxstore/internal/api/errors"
)

// SearchTracksParams — параметры GET /api/spotify/search.
type SearchTracksParams struct {
	Query *string
	Limit *int
}

// ServerInterface — операции HTTP API boxstore.
type ServerInterface interface {
	HealthLive(w http.ResponseWriter, r *http.Request)
	HealthReady(w http.ResponseWriter, r *http.Request)
	GetMetrics(w http.ResponseWriter, r *http.Request)
	GetOpenAPI(w http.ResponseWriter, r *http.Request)

	CreateBox(w http.ResponseWriter, r *http.Request)
	ListBoxes(w http.ResponseWriter, r *http.Request)
	UploadImage(w http.ResponseWriter, r *http.Request)
	GetImage(w http.ResponseWriter, r *http.Request, id openapi_types.UUID)
	GetImageMetadata(w http.ResponseWriter, r *http.Request, id openapi_types.UUID)
	UploadBackground(w http.ResponseWriter, r *http.Request)
	GetBackground(w http.ResponseWriter, r *http.Request, boxID string)

	SaveText(w http.ResponseWriter, r *http.Request)
	ListTexts(w http.ResponseWriter, r *http.Request, boxID string)
	DeleteText(w http.ResponseWriter, r *http.Request, id int64)

	SearchTracks(w http.ResponseWriter, r *http.Request, params SearchTracksParams)
	GetSong(w http.ResponseWriter, r *http.Request, id string)
	SaveSong(w http.ResponseWriter, r *http.Request)
	ListSongs(w http.ResponseWriter, r *http.Request, boxID string)
	DeleteSong(w http.ResponseWriter, r *http.Request, id int64)
}

// HandlerFromMux регистрирует все маршруты API на переданном chi-роутере.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	w := &wrapper{handler: si}

	r.Get("/health/live", si.HealthLive)
	r.Get("/health/ready", si.HealthReady)
	r.Get("/metrics", si.GetMetrics)
	r.Get("/api/openapi.json", si.GetOpenAPI)

	r.Post("/api/images/boxes", si.CreateBox)
	r.Get("/api/images/boxes", si.ListBoxes)
	r.Post("/api/images/upload", si.UploadImage)
	r.Post("/api/images/background/upload", si.UploadBackground)
	r.Get("/api/images/background/{boxId}", w.GetBackground)
	r.Get("/api/images/{id}", w.GetImage)
	r.Get("/api/images/{id}/metadata", w.GetImageMetadata)

	r.Post("/api/text/save", si.SaveText)
	r.Get("/api/text/box/{boxId}", w.ListTexts)
	r.Delete("/api/text/{id}", w.DeleteText)

	r.Get("/api/spotify/search", w.SearchTracks)
	r.Get("/api/spotify/song/{id}", w.GetSong)
	r.Delete("/api/spotify/song/{id}", w.DeleteSong)
	r.Post("/api/spotify/save", si.SaveSong)
	r.Get("/api/spotify/box/{boxId}", w.ListSongs)

	return r
}

// wrapper разбирает параметры и передаёт их в ServerInterface.
type wrapper struct {
	handler ServerInterface
}

// invalidParam — 400 при некорректном параметре пути или запроса.
func invalidParam(w http.ResponseWriter, name string, err error) {
	apierrors.BadRequest(w, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
}

// imageNotFound — id изображения не UUID: такого изображения заведомо нет.
func imageNotFound(w http.ResponseWriter) {
	apierrors.NotFound(w, "Image not found")
}

func bindPath(r *http.Request, name string, dest any) error {
	return runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
}

func (siw *wrapper) GetImage(w http.ResponseWriter, r *http.Request) {
	var id openapi_types.UUID
	if err := bindPath(r, "id", &id); err != nil {
		imageNotFound(w)
		return
	}
	siw.handler.GetImage(w, r, id)
}

func (siw *wrapper) GetImageMetadata(w http.ResponseWriter, r *http.Request) {
	var id openapi_types.UUID
	if err := bindPath(r, "id", &id); err != nil {
		imageNotFound(w)
		return
	}
	siw.handler.GetImageMetadata(w, r, id)
}

func (siw *wrapper) GetBackground(w http.ResponseWriter, r *http.Request) {
	var boxID string
	if err := bindPath(r, "boxId", &boxID); err != nil {
		invalidParam(w, "boxId", err)
		return
	}
	siw.handler.GetBackground(w, r, boxID)
}

func (siw *wrapper) ListTexts(w http.ResponseWriter, r *http.Request) {
	var boxID string
	if err := bindPath(r, "boxId", &boxID); err != nil {
		invalidParam(w, "boxId", err)
		return
	}
	siw.handler.ListTexts(w, r, boxID)
}

func (siw *wrapper) DeleteText(w http.ResponseWriter, r *http.Request) {
	var id int64
	if err := bindPath(r, "id", &id); err != nil {
		invalidParam(w, "id", err)
		return
	}
	siw.handler.DeleteText(w, r, id)
}

func (siw *wrapper) SearchTracks(w http.ResponseWriter, r *http.Request) {
	var params SearchTracksParams
	if err := runtime.BindQueryParameter("form", true, false, "query", r.URL.Query(), &params.Query); err != nil {
		invalidParam(w, "query", err)
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		invalidParam(w, "limit", err)
		return
	}
	siw.handler.SearchTracks(w, r, params)
}

func (siw *wrapper) GetSong(w http.ResponseWriter, r *http.Request) {
	var id string
	if err := bindPath(r, "id", &id); err != nil {
		invalidParam(w, "id", err)
		return
	}
	siw.handler.GetSong(w, r, id)
}

func (siw *wrapper) DeleteSong(w http.ResponseWriter, r *http.Request) {
	var id int64
	if err := bindPath(r, "id", &id); err != nil {
		invalidParam(w, "id", err)
		return
	}
	siw.handler.DeleteSong(w, r, id)
}

func (siw *wrapper) ListSongs(w http.ResponseWriter, r *http.Request) {
	var boxID string
	if err := bindPath(r, "boxId", &boxID); err != nil {
		invalidParam(w, "boxId", err)
		return
	}
	siw.handler.ListSongs(w, r, boxID)
}
