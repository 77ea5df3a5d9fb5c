// Пакет catalog — HTTP-клиент к внешнему музыкальному каталогу (Spotify Web API).
// models.go — модели данных каталога.
package catalog

import (
	"encoding/json"
	"time"
)

// tokenResponse — ответ на запрос токена через Client Credentials flow.
type tokenResponse struct {
	AccessToken string `json:"access_token"` //nolint:gosec // G117: структура токена OAuth2
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token — токен доступа к каталогу. Живёт только в памяти процесса.
type Token struct {
	AccessToken string
	AcquiredAt  time.Time
}

// Track — типизированное представление трека каталога.
// Raw хранит тело ответа без изменений для прозрачной отдачи клиенту.
type Track struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Artists      []Artist     `json:"artists"`
	Album        Album        `json:"album"`
	PreviewURL   *string      `json:"preview_url"`
	ExternalURLs ExternalURLs `json:"external_urls"`

	Raw json.RawMessage `json:"-"`
}

// Artist — исполнитель трека.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Album — альбом трека.
type Album struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

// Image — обложка альбома.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// ExternalURLs — внешние ссылки на объект каталога.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// searchResponse — ответ /search?type=track.
// Элементы не декодируются: отдаются клиенту как есть.
type searchResponse struct {
	Tracks *struct {
		Items []json.RawMessage `json:"items"`
	} `json:"tracks"`
}
