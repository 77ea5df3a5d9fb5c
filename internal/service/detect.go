// detect.go — многоуровневое определение MIME-типа загружаемого файла.
// Порядок: заявленный клиентом тип → анализ содержимого → расширение имени файла.
package service

import (
	"bytes"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DetectInput — данные, доступные при определении типа.
type DetectInput struct {
	Data             []byte
	OriginalFilename string
	DeclaredMIME     string
}

// DetectLayer — один уровень определения типа.
// Возвращает "" если уровень не смог определить тип.
type DetectLayer interface {
	Name() string
	Detect(in DetectInput) string
}

// Detector перебирает уровни по порядку до первого непустого результата.
type Detector struct {
	layers []DetectLayer
}

// NewDetector создаёт детектор с указанными уровнями.
func NewDetector(layers ...DetectLayer) *Detector {
	return &Detector{layers: layers}
}

// DefaultDetector — declared → sniff → extension.
func DefaultDetector() *Detector {
	return NewDetector(DeclaredLayer{}, SniffLayer{}, ExtensionLayer{})
}

// Detect возвращает определённый MIME-тип и имя сработавшего уровня.
// ("", "") — тип не определён.
func (d *Detector) Detect(in DetectInput) (mimeType, layer string) {
	for _, l := range d.layers {
		if mt := l.Detect(in); mt != "" {
			return mt, l.Name()
		}
	}
	return "", ""
}

const octetStream = "application/octet-stream"

// normalizeMIME убирает параметры и приводит тип к нижнему регистру.
// Пустая строка, octet-stream и всё, что не разбирается как type/subtype, — «не определено».
func normalizeMIME(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return ""
	}
	// ParseMediaType принимает и одиночный токен ("image").
	major, minor, ok := strings.Cut(mt, "/")
	if !ok || major == "" || minor == "" {
		return ""
	}
	if mt == octetStream {
		return ""
	}
	return mt
}

// DeclaredLayer — тип, заявленный клиентом в Content-Type части multipart.
type DeclaredLayer struct{}

func (DeclaredLayer) Name() string { return "declared" }

func (DeclaredLayer) Detect(in DetectInput) string {
	return normalizeMIME(in.DeclaredMIME)
}

// Короткие сигнатуры проверяются до mimetype: усечённый PNG
// без полной 8-байтовой сигнатуры mimetype принимает за текст.
var shortSignatures = []struct {
	prefix []byte
	mime   string
}{
	{[]byte("\x89PNG"), "image/png"},
	{[]byte("\xFF\xD8\xFF"), "image/jpeg"},
	{[]byte("GIF8"), "image/gif"},
}

// SniffLayer — определение по содержимому (gabriel-vasile/mimetype).
type SniffLayer struct{}

func (SniffLayer) Name() string { return "sniff" }

func (SniffLayer) Detect(in DetectInput) string {
	if len(in.Data) == 0 {
		return ""
	}
	for _, sig := range shortSignatures {
		if bytes.HasPrefix(in.Data, sig.prefix) {
			return sig.mime
		}
	}
	return normalizeMIME(mimetype.Detect(in.Data).String())
}

var extensionTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".txt":  "text/plain",
}

// ExtensionLayer — определение по расширению исходного имени файла.
type ExtensionLayer struct{}

func (ExtensionLayer) Name() string { return "extension" }

func (ExtensionLayer) Detect(in DetectInput) string {
	if in.OriginalFilename == "" {
		return ""
	}
	return extensionTypes[strings.ToLower(filepath.Ext(in.OriginalFilename))]
}
