package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/boxstore/internal/database"
	"github.com/bigkaa/boxstore/internal/database/dbtest"
	"github.com/bigkaa/boxstore/internal/domain/model"
)

// --- Тесты BoxRepository ---

func TestBoxCreate_Conflict(t *testing.T) {
	db := dbtest.NewSQLite(t)
	ctx := context.Background()
	repo := NewBoxRepository(db)

	if err := repo.Create(ctx, "b1"); err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	if err := repo.Create(ctx, "b1"); !errors.Is(err, ErrConflict) {
		t.Errorf("Повторный Create() = %v, хотели ErrConflict", err)
	}
}

func TestBoxListWithImages(t *testing.T) {
	db := dbtest.NewSQLite(t)
	ctx := context.Background()
	boxes := NewBoxRepository(db)
	images := NewImageRepository(db, db)

	for _, id := range []string{"empty", "full"} {
		if err := boxes.Create(ctx, id); err != nil {
			t.Fatalf("Create(%s) ошибка: %v", id, err)
		}
	}

	base := time.Now().UTC()
	var ids []string
	for i := 0; i < 2; i++ {
		img := &model.Image{
			ID:          uuid.New().String(),
			BoxID:       "full",
			Data:        []byte{0x89, 'P', 'N', 'G'},
			ContentType: "image/png",
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}
		if err := images.Create(ctx, img); err != nil {
			t.Fatalf("images.Create() ошибка: %v", err)
		}
		ids = append(ids, img.ID)
	}

	// Элемент box_contents без строки в images не попадает в список
	if _, err := db.ExecContext(ctx, `INSERT INTO box_contents (box_id, item_id) VALUES (?, ?)`, "full", "dangling"); err != nil {
		t.Fatalf("Вставка висячего элемента: %v", err)
	}

	list, err := boxes.ListWithImages(ctx)
	if err != nil {
		t.Fatalf("ListWithImages() ошибка: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListWithImages() вернул %d боксов, хотели 2", len(list))
	}

	byID := map[string]model.BoxSummary{}
	for _, b := range list {
		byID[b.BoxID] = b
	}

	if got := byID["empty"].ImageIDs; got == nil || len(got) != 0 {
		t.Errorf("empty.ImageIDs = %v, хотели пустой срез", got)
	}
	full := byID["full"].ImageIDs
	if len(full) != 2 || full[0] != ids[0] || full[1] != ids[1] {
		t.Errorf("full.ImageIDs = %v, хотели %v", full, ids)
	}
}

// --- Тесты ImageRepository ---

func TestImageCreateGet(t *testing.T) {
	db := dbtest.NewSQLite(t)
	ctx := context.Background()
	repo := NewImageRepository(db, db)

	img := &model.Image{
		ID:          uuid.New().String(),
		BoxID:       "b1",
		Data:        []byte("GIF89a"),
		ContentType: "image/gif",
		CreatedAt:   time.Now().UTC(),
	}
	if err := repo.Create(ctx, img); err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}

	got, err := repo.GetByID(ctx, img.ID)
	if err != nil {
		t.Fatalf("GetByID() ошибка: %v", err)
	}
	if string(got.Data) != "GIF89a" {
		t.Errorf("Data = %q, хотели %q", got.Data, "GIF89a")
	}
	if got.ContentType != "image/gif" {
		t.Errorf("ContentType = %q, хотели image/gif", got.ContentType)
	}

	meta, err := repo.GetMetadata(ctx, img.ID)
	if err != nil {
		t.Fatalf("GetMetadata() ошибка: %v", err)
	}
	if meta.Size != 6 || meta.BoxID != "b1" {
		t.Errorf("GetMetadata() = %+v, хотели size=6 box=b1", meta)
	}

	// Инвариант: ровно одна строка box_contents на изображение
	var count int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM box_contents WHERE box_id = ? AND item_id = ?`, "b1", img.ID,
	).Scan(&count); err != nil {
		t.Fatalf("COUNT: %v", err)
	}
	if count != 1 {
		t.Errorf("box_contents содержит %d строк для изображения, хотели 1", count)
	}
}

func TestImageCreate_EmptyPayload(t *testing.T) {
	db := dbtest.NewSQLite(t)
	ctx := context.Background()
	repo := NewImageRepository(db, db)

	img := &model.Image{ID: uuid.New().String(), BoxID: "b1", ContentType: "image/png", CreatedAt: time.Now().UTC()}
	if err := repo.Create(ctx, img); err != nil {
		t.Fatalf("Create() с пустым payload ошибка: %v", err)
	}
	got, err := repo.GetByID(ctx, img.ID)
	if err != nil {
		t.Fatalf("GetByID() ошибка: %v", err)
	}
	if len(got.Data) != 0 {
		t.Errorf("len(Data) = %d, хотели 0", len(got.Data))
	}
}

func TestImageGet_NotFound(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewImageRepository(db, db)

	if _, err := repo.GetByID(context.Background(), uuid.New().String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() = %v, хотели ErrNotFound", err)
	}
	if _, err := repo.GetMetadata(context.Background(), uuid.New().String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMetadata() = %v, хотели ErrNotFound", err)
	}
}

// failingTx — TxRunner, выполняющий fn в настоящей транзакции и затем откатывающий её.
type failingTx struct {
	db *database.DB
}

var errInjected = errors.New("сбой после вставки")

func (f failingTx) RunInTx(ctx context.Context, fn func(tx database.Querier) error) error {
	return f.db.RunInTx(ctx, func(tx database.Querier) error {
		if err := fn(tx); err != nil {
			return err
		}
		return errInjected
	})
}

// TestImageCreate_Atomic — при сбое транзакции не остаётся ни изображения, ни box_contents.
func TestImageCreate_Atomic(t *testing.T) {
	db := dbtest.NewSQLite(t)
	ctx := context.Background()
	repo := NewImageRepository(db, failingTx{db: db})

	img := &model.Image{ID: uuid.New().String(), BoxID: "b1", Data: []byte("x"), ContentType: "image/png", CreatedAt: time.Now().UTC()}
	if err := repo.Create(ctx, img); !errors.Is(err, errInjected) {
		t.Fatalf("Create() = %v, хотели errInjected", err)
	}

	for _, table := range []string{"images", "box_contents"} {
		var count int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			t.Fatalf("COUNT %s: %v", table, err)
		}
		if count != 0 {
			t.Errorf("%s содержит %d строк после отката, хотели 0", table, count)
		}
	}
}

// --- Тесты BackgroundRepository ---

func TestBackgroundUpsert(t *testing.T) {
	db := dbtest.NewSQLite(t)
	ctx := context.Background()
	repo := NewBackgroundRepository(db)

	if _, err := repo.GetByBoxID(ctx, "b1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByBoxID() до загрузки = %v, хотели ErrNotFound", err)
	}

	first := &model.BackgroundImage{BoxID: "b1", Data: []byte("first"), ContentType: "image/png", UpdatedAt: time.Now().UTC()}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert() ошибка: %v", err)
	}
	second := &model.BackgroundImage{BoxID: "b1", Data: []byte("second"), ContentType: "image/jpeg", UpdatedAt: time.Now().UTC()}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("Повторный Upsert() ошибка: %v", err)
	}

	got, err := repo.GetByBoxID(ctx, "b1")
	if err != nil {
		t.Fatalf("GetByBoxID() ошибка: %v", err)
	}
	if string(got.Data) != "second" || got.ContentType != "image/jpeg" {
		t.Errorf("GetByBoxID() = %q/%s, хотели second/image/jpeg", got.Data, got.ContentType)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM background_images WHERE box_id = ?`, "b1").Scan(&count); err != nil {
		t.Fatalf("COUNT: %v", err)
	}
	if count != 1 {
		t.Errorf("background_images содержит %d строк для бокса, хотели 1", count)
	}
}

// --- Тесты TextRepository ---

func TestTextCRUD(t *testing.T) {
	db := dbtest.NewSQLite(t)
	ctx := context.Background()
	repo := NewTextRepository(db)

	base := time.Now().UTC()
	first := &model.Text{BoxID: "b1", Content: "first", CreatedAt: base}
	second := &model.Text{BoxID: "b1", Content: "second", CreatedAt: base.Add(time.Second)}
	other := &model.Text{BoxID: "b2", Content: "other", CreatedAt: base}

	for _, txt := range []*model.Text{first, second, other} {
		if err := repo.Create(ctx, txt); err != nil {
			t.Fatalf("Create() ошибка: %v", err)
		}
		if txt.ID == 0 {
			t.Error("ID не установлен после Create()")
		}
	}

	list, err := repo.ListByBox(ctx, "b1")
	if err != nil {
		t.Fatalf("ListByBox() ошибка: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListByBox() вернул %d записей, хотели 2", len(list))
	}
	if list[0].Content != "second" || list[1].Content != "first" {
		t.Errorf("Порядок = [%s, %s], хотели [second, first]", list[0].Content, list[1].Content)
	}

	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	if err := repo.Delete(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Повторный Delete() = %v, хотели ErrNotFound", err)
	}

	empty, err := repo.ListByBox(ctx, "missing")
	if err != nil {
		t.Fatalf("ListByBox() ошибка: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ListByBox(missing) = %v, хотели пустой срез", empty)
	}
}

// --- Тесты TrackRepository ---

func TestTrackCRUD(t *testing.T) {
	db := dbtest.NewSQLite(t)
	ctx := context.Background()
	repo := NewTrackRepository(db)

	preview := "https://p.scdn.co/mp3-preview/abc"
	base := time.Now().UTC()
	withPreview := &model.Track{
		BoxID: "b1", RemoteID: "3n3Ppam7vgaVa1iaRUc9Lp", Name: "Mr. Brightside", Artist: "The Killers",
		Album: "Hot Fuss", AlbumCoverURL: "https://i.scdn.co/image/1", PreviewURL: &preview,
		RemoteURL: "https://open.spotify.com/track/3n3Ppam7vgaVa1iaRUc9Lp", CreatedAt: base,
	}
	// Дубликат того же трека в том же боксе допускается
	duplicate := *withPreview
	duplicate.PreviewURL = nil
	duplicate.CreatedAt = base.Add(time.Second)

	if err := repo.Create(ctx, withPreview); err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	if err := repo.Create(ctx, &duplicate); err != nil {
		t.Fatalf("Create() дубликата ошибка: %v", err)
	}
	if duplicate.ID == withPreview.ID {
		t.Errorf("Дубликат получил тот же ID %d", duplicate.ID)
	}

	list, err := repo.ListByBox(ctx, "b1")
	if err != nil {
		t.Fatalf("ListByBox() ошибка: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListByBox() вернул %d записей, хотели 2", len(list))
	}
	if list[0].ID != duplicate.ID {
		t.Errorf("Первым ожидался самый новый трек %d, получили %d", duplicate.ID, list[0].ID)
	}
	if list[0].PreviewURL != nil {
		t.Errorf("PreviewURL = %v, хотели nil", *list[0].PreviewURL)
	}
	if list[1].PreviewURL == nil || *list[1].PreviewURL != preview {
		t.Errorf("PreviewURL = %v, хотели %q", list[1].PreviewURL, preview)
	}

	if err := repo.Delete(ctx, withPreview.ID); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	if err := repo.Delete(ctx, withPreview.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Повторный Delete() = %v, хотели ErrNotFound", err)
	}
}
