package service

import "testing"

func TestDeclaredLayer(t *testing.T) {
	tests := []struct {
		declared string
		want     string
	}{
		{"image/png", "image/png"},
		{"Image/PNG", "image/png"},
		{"text/plain; charset=utf-8", "text/plain"},
		{"  ", ""},
		{"", ""},
		{"application/octet-stream", ""},
		{"application/pdf", "application/pdf"},
		{"image", ""},
		{"tile", ""},
		{"image/", ""},
		{"/png", ""},
		{"image/png; =broken", ""},
	}

	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			if got := (DeclaredLayer{}).Detect(DetectInput{DeclaredMIME: tt.declared}); got != tt.want {
				t.Errorf("Detect(%q) = %q, ожидался %q", tt.declared, got, tt.want)
			}
		})
	}
}

func TestSniffLayer(t *testing.T) {
	pngHeader := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"пустой payload", nil, ""},
		{"4 байта PNG", []byte("\x89PNG"), "image/png"},
		{"полный заголовок PNG", pngHeader, "image/png"},
		{"3 байта JPEG", []byte("\xFF\xD8\xFF"), "image/jpeg"},
		{"GIF", []byte("GIF89a\x01\x00\x01\x00"), "image/gif"},
		{"текст", []byte("hello, box"), "text/plain"},
		{"PDF", []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"), "application/pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (SniffLayer{}).Detect(DetectInput{Data: tt.data}); got != tt.want {
				t.Errorf("Detect() = %q, ожидался %q", got, tt.want)
			}
		})
	}
}

func TestExtensionLayer(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"photo.PNG", "image/png"},
		{"photo.jpg", "image/jpeg"},
		{"photo.jpeg", "image/jpeg"},
		{"anim.gif", "image/gif"},
		{"notes.txt", "text/plain"},
		{"archive.zip", ""},
		{"noext", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := (ExtensionLayer{}).Detect(DetectInput{OriginalFilename: tt.filename}); got != tt.want {
				t.Errorf("Detect(%q) = %q, ожидался %q", tt.filename, got, tt.want)
			}
		})
	}
}

// TestDetector_Order — первый уровень с непустым результатом побеждает.
func TestDetector_Order(t *testing.T) {
	d := DefaultDetector()

	tests := []struct {
		name      string
		in        DetectInput
		wantMIME  string
		wantLayer string
	}{
		{
			name:      "заявленный тип важнее содержимого",
			in:        DetectInput{Data: []byte("\x89PNG"), DeclaredMIME: "image/gif", OriginalFilename: "a.jpg"},
			wantMIME:  "image/gif",
			wantLayer: "declared",
		},
		{
			name:      "без заявленного типа — содержимое",
			in:        DetectInput{Data: []byte("\x89PNG"), OriginalFilename: "a.jpg"},
			wantMIME:  "image/png",
			wantLayer: "sniff",
		},
		{
			name:      "octet-stream не считается заявленным",
			in:        DetectInput{Data: []byte("\x89PNG"), DeclaredMIME: "application/octet-stream"},
			wantMIME:  "image/png",
			wantLayer: "sniff",
		},
		{
			name:      "пустой payload — расширение",
			in:        DetectInput{OriginalFilename: "a.jpeg"},
			wantMIME:  "image/jpeg",
			wantLayer: "extension",
		},
		{
			name:      "ничего не определено",
			in:        DetectInput{},
			wantMIME:  "",
			wantLayer: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mt, layer := d.Detect(tt.in)
			if mt != tt.wantMIME || layer != tt.wantLayer {
				t.Errorf("Detect() = (%q, %q), ожидалось (%q, %q)", mt, layer, tt.wantMIME, tt.wantLayer)
			}
		})
	}
}
