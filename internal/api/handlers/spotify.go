// spotify.go — обработчики треков: сквозной поиск в каталоге и треки, сохранённые в боксы.
// Ответы поиска и /song/{id} отдаются в том виде, в каком их вернул каталог.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/bigkaa/boxstore/internal/api/middleware"
	"github.com/bigkaa/boxstore/internal/domain/model"
	"github.com/bigkaa/boxstore/internal/service"
)

type saveSongRequest struct {
	BoxID     string `json:"boxId" validate:"required"`
	SpotifyID string `json:"spotifyId" validate:"required"`
}

type saveSongResponse struct {
	Message   string `json:"message"`
	ID        int64  `json:"id"`
	BoxID     string `json:"boxId"`
	SpotifyID string `json:"spotifyId"`
	Name      string `json:"name"`
	Artist    string `json:"artist"`
}

// songResponse — сохранённый трек. previewUrl сериализуется как null при отсутствии.
type songResponse struct {
	ID            int64     `json:"id"`
	BoxID         string    `json:"boxId"`
	SpotifyID     string    `json:"spotifyId"`
	Name          string    `json:"name"`
	Artist        string    `json:"artist"`
	Album         string    `json:"album"`
	AlbumCoverURL string    `json:"albumCoverUrl"`
	PreviewURL    *string   `json:"previewUrl"`
	SpotifyURL    string    `json:"spotifyUrl"`
	CreatedAt     time.Time `json:"createdAt"`
}

type deleteSongResponse struct {
	Message string `json:"message"`
	SongID  int64  `json:"songId"`
}

// SearchTracks — GET /api/spotify/search?query=…&limit=N.
func (h *APIHandler) SearchTracks(w http.ResponseWriter, r *http.Request, params SearchTracksParams) {
	query := ""
	if params.Query != nil {
		query = *params.Query
	}
	limit := service.DefaultSearchLimit
	if params.Limit != nil {
		limit = *params.Limit
	}

	items, err := h.tracks.Search(r.Context(), query, limit)
	if err != nil {
		h.writeServiceError(w, err, "Track not found", "search tracks")
		return
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, items)
}

// GetSong — GET /api/spotify/song/{id}.
func (h *APIHandler) GetSong(w http.ResponseWriter, r *http.Request, id string) {
	raw, err := h.tracks.Song(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "Track not found", "fetch song")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// SaveSong — POST /api/spotify/save.
func (h *APIHandler) SaveSong(w http.ResponseWriter, r *http.Request) {
	var req saveSongRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	middleware.SetBoxID(r.Context(), req.BoxID)

	t, err := h.tracks.SaveTrack(r.Context(), req.BoxID, req.SpotifyID)
	if err != nil {
		h.writeServiceError(w, err, "Track not found", "save song")
		return
	}

	writeJSON(w, http.StatusOK, saveSongResponse{
		Message:   "Song saved successfully",
		ID:        t.ID,
		BoxID:     t.BoxID,
		SpotifyID: t.RemoteID,
		Name:      t.Name,
		Artist:    t.Artist,
	})
}

// ListSongs — GET /api/spotify/box/{boxId}. Новые первыми.
func (h *APIHandler) ListSongs(w http.ResponseWriter, r *http.Request, boxID string) {
	tracks, err := h.tracks.ListTracks(r.Context(), boxID)
	if err != nil {
		h.writeServiceError(w, err, "Box not found", "fetch songs")
		return
	}
	writeJSON(w, http.StatusOK, tracksToResponse(tracks))
}

// DeleteSong — DELETE /api/spotify/song/{id}.
func (h *APIHandler) DeleteSong(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.tracks.DeleteTrack(r.Context(), id); err != nil {
		h.writeServiceError(w, err, "Song not found", "delete song")
		return
	}

	writeJSON(w, http.StatusOK, deleteSongResponse{
		Message: "Song deleted successfully",
		SongID:  id,
	})
}

func tracksToResponse(tracks []*model.Track) []songResponse {
	resp := make([]songResponse, 0, len(tracks))
	for _, t := range tracks {
		resp = append(resp, songResponse{
			ID:            t.ID,
			BoxID:         t.BoxID,
			SpotifyID:     t.RemoteID,
			Name:          t.Name,
			Artist:        t.Artist,
			Album:         t.Album,
			AlbumCoverURL: t.AlbumCoverURL,
			PreviewURL:    t.PreviewURL,
			SpotifyURL:    t.RemoteURL,
			CreatedAt:     t.CreatedAt,
		})
	}
	return resp
}
