// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import (
	"errors"
	"fmt"

	"github.com/bigkaa/boxstore/internal/domain/model"
)

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrConflict — конфликт (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт — ресурс уже существует")
	// ErrInvalidInput — некорректные входные данные.
	ErrInvalidInput = errors.New("некорректные входные данные")
	// ErrWrongEndpoint — в загрузку изображений прислан текстовый файл.
	ErrWrongEndpoint = errors.New("текстовый файл отправлен в загрузку изображений")
	// ErrUnsupportedMedia — тип файла не поддерживается.
	ErrUnsupportedMedia = errors.New("неподдерживаемый тип файла")
	// ErrCatalogShape — в ответе каталога отсутствует обязательное поле.
	ErrCatalogShape = errors.New("в ответе каталога отсутствует обязательное поле")
)

// Уточнения ErrInvalidInput (errors.Is(err, ErrInvalidInput) == true).
var (
	ErrBoxIDRequired   = fmt.Errorf("%w: не указан boxId", ErrInvalidInput)
	ErrTextEmpty       = fmt.Errorf("%w: пустой текст", ErrInvalidInput)
	ErrTextTooLong     = fmt.Errorf("%w: текст длиннее %d символов", ErrInvalidInput, model.MaxTextLength)
	ErrQueryRequired   = fmt.Errorf("%w: пустой поисковый запрос", ErrInvalidInput)
	ErrLimitOutOfRange = fmt.Errorf("%w: limit вне диапазона %d..%d", ErrInvalidInput, MinSearchLimit, MaxSearchLimit)
	ErrTrackIDRequired = fmt.Errorf("%w: не указан spotifyId", ErrInvalidInput)
)

// MediaError — отказ в загрузке из-за MIME-типа.
// Несёт определённый тип, чтобы API мог вернуть его клиенту.
type MediaError struct {
	// Err — ErrWrongEndpoint или ErrUnsupportedMedia
	Err error
	// DetectedMIME — определённый тип ("" — не удалось определить)
	DetectedMIME string
}

func (e *MediaError) Error() string {
	if e.DetectedMIME == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.DetectedMIME
}

func (e *MediaError) Unwrap() error {
	return e.Err
}
