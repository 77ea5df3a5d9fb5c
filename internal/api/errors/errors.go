// Пакет errors — единый формат ошибок HTTP API boxstore.
// Формат: {"error": "<сообщение>"}; ошибки типа файла дополнительно несут detectedMime.
package errors //nolint:revive // имя пакета совпадает со stdlib, импортируется как apierrors

import (
	"encoding/json"
	"net/http"
)

// Сообщения, которые клиент получает дословно.
const (
	MsgBoxIDRequired    = "Missing 'boxId' field in request body"
	MsgWrongEndpoint    = "Uploaded file is a text file. Use /api/texts/upload for text uploads."
	MsgUnsupportedMedia = "Unsupported file type. Expected an image (png/jpg/gif)."
	MsgTextTooLong      = "Text content exceeds 500 character limit"
	MsgTextEmpty        = "Text content cannot be empty"
	MsgFileRequired     = "No file uploaded"
	MsgInvalidJSON      = "Invalid JSON in request body"
	MsgInternal         = "Internal server error"
)

// errorBody — тело ответа ошибки.
type errorBody struct {
	Error        string `json:"error"`
	DetectedMIME string `json:"detectedMime,omitempty"`
}

// WriteError записывает ответ ошибки.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	write(w, statusCode, errorBody{Error: message})
}

// WriteMediaError записывает ошибку типа файла с определённым MIME-типом.
// Пустой detected в ответ не попадает.
func WriteMediaError(w http.ResponseWriter, statusCode int, message, detected string) {
	write(w, statusCode, errorBody{Error: message, DetectedMIME: detected})
}

func write(w http.ResponseWriter, statusCode int, body errorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// --- Конструкторы для типичных ошибок ---

// BadRequest — 400 некорректные входные данные.
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

// Conflict — 409 ресурс уже существует.
func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, message)
}

// InternalError — 500 внутренняя ошибка сервера.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}
