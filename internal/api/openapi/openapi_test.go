package openapi

import (
	"context"
	"encoding/json"
	"testing"
)

func TestLoad(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() ошибка: %v", err)
	}

	for _, path := range []string{"/api/images/boxes", "/api/images/{id}", "/api/spotify/search"} {
		if doc.Paths.Find(path) == nil {
			t.Errorf("путь %s отсутствует в документе", path)
		}
	}
}

func TestJSON(t *testing.T) {
	data, err := JSON(context.Background())
	if err != nil {
		t.Fatalf("JSON() ошибка: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("документ не является JSON: %v", err)
	}
	if doc["openapi"] != "3.0.3" {
		t.Errorf("openapi = %v, ожидалось 3.0.3", doc["openapi"])
	}
}
