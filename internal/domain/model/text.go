package model

import "time"

// MaxTextLength — максимальная длина текста в символах.
const MaxTextLength = 500

// Text — короткая текстовая заметка в боксе.
type Text struct {
	ID        int64
	BoxID     string
	Content   string
	CreatedAt time.Time
}
