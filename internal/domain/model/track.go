package model

import "time"

// Track — трек внешнего каталога (Spotify), сохранённый в боксе.
// Поля копируются из каталога в момент сохранения и дальше не обновляются.
type Track struct {
	ID            int64
	BoxID         string
	RemoteID      string
	Name          string
	Artist        string
	Album         string
	AlbumCoverURL string
	// PreviewURL — ссылка на превью (у части треков отсутствует)
	PreviewURL *string
	RemoteURL  string
	CreatedAt  time.Time
}
