package storage_test

import (
	"path/filepath"
	"testing"

	"canvas/internal/domain"
	"canvas/internal/storage"
)

func openDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "nested", "canvas.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func template(n int) *domain.Template {
	t := &domain.Template{Size: domain.Size{Width: 1280, Height: 720}, Background: "#ffffff", Blocks: []*domain.Block{}}
	for i := 0; i < n; i++ {
		b := domain.NewFrameBlock("Frame", float64(i*10), 0, 100, 100)
		t.Blocks = append(t.Blocks, b)
	}
	return t
}

// ── documents ───────────────────────────────────────────────

func TestDocumentStore_SaveGet(t *testing.T) {
	docs := storage.NewDocumentStore(openDB(t))
	want := template(2)
	doc := &storage.Document{ID: "doc-1", Name: "Landing", Template: want}
	if err := docs.Save(doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := docs.Get("doc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Landing" || len(got.Template.Blocks) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.Template.Blocks[1].ID != want.Blocks[1].ID || got.Template.Blocks[1].X != 10 {
		t.Errorf("block order or geometry lost: %+v", got.Template.Blocks[1].Base)
	}
	if got.Template.Background != "#ffffff" {
		t.Errorf("background = %q", got.Template.Background)
	}
}

func TestDocumentStore_SaveUpdatesInPlace(t *testing.T) {
	docs := storage.NewDocumentStore(openDB(t))
	doc := &storage.Document{ID: "doc-1", Name: "v1", Template: template(1)}
	if err := docs.Save(doc); err != nil {
		t.Fatal(err)
	}
	created := doc.CreatedAt

	doc.Name = "v2"
	doc.Template = template(3)
	if err := docs.Save(doc); err != nil {
		t.Fatal(err)
	}
	list, err := docs.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("list has %d documents, want 1", len(list))
	}
	if list[0].Name != "v2" || list[0].Blocks != 3 {
		t.Errorf("summary = %+v", list[0])
	}
	if !doc.CreatedAt.Equal(created) {
		t.Error("CreatedAt changed on update")
	}
}

func TestDocumentStore_GetMissing(t *testing.T) {
	docs := storage.NewDocumentStore(openDB(t))
	_, err := docs.Get("nope")
	if !domain.IsCode(err, domain.ErrCodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestDocumentStore_SaveWithoutTemplate(t *testing.T) {
	docs := storage.NewDocumentStore(openDB(t))
	if err := docs.Save(&storage.Document{ID: "x"}); err == nil {
		t.Fatal("expected error for document without template")
	}
}

func TestDocumentStore_DeleteRemovesHistory(t *testing.T) {
	db := openDB(t)
	docs := storage.NewDocumentStore(db)
	hist := storage.NewHistoryStore(db, 0)

	if err := docs.Save(&storage.Document{ID: "doc", Name: "d", Template: template(0)}); err != nil {
		t.Fatal(err)
	}
	if err := hist.Save("doc", []*domain.Template{template(1)}, nil); err != nil {
		t.Fatal(err)
	}
	if err := docs.Delete("doc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := docs.Get("doc"); !domain.IsCode(err, domain.ErrCodeNotFound) {
		t.Errorf("document still present: %v", err)
	}
	if undo, redo, _ := hist.Count("doc"); undo+redo != 0 {
		t.Errorf("history survived delete: %d/%d", undo, redo)
	}
	if err := docs.Delete("doc"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

// ── history ─────────────────────────────────────────────────

func TestHistoryStore_RoundTrip(t *testing.T) {
	hist := storage.NewHistoryStore(openDB(t), 0)
	undo := []*domain.Template{template(3), template(2), template(1)}
	redo := []*domain.Template{template(4)}

	if err := hist.Save("doc", undo, redo); err != nil {
		t.Fatalf("save: %v", err)
	}
	gotUndo, gotRedo, err := hist.Load("doc")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(gotUndo) != 3 || len(gotRedo) != 1 {
		t.Fatalf("loaded %d/%d entries, want 3/1", len(gotUndo), len(gotRedo))
	}
	for i, want := range []int{3, 2, 1} {
		if n := len(gotUndo[i].Blocks); n != want {
			t.Errorf("undo[%d] has %d blocks, want %d", i, n, want)
		}
	}
	if gotUndo[0].Blocks[2].ID != undo[0].Blocks[2].ID {
		t.Error("block ids not preserved")
	}
}

func TestHistoryStore_SaveReplaces(t *testing.T) {
	hist := storage.NewHistoryStore(openDB(t), 0)
	if err := hist.Save("doc", []*domain.Template{template(1), template(1)}, nil); err != nil {
		t.Fatal(err)
	}
	if err := hist.Save("doc", []*domain.Template{template(2)}, nil); err != nil {
		t.Fatal(err)
	}
	undo, redo, err := hist.Count("doc")
	if err != nil {
		t.Fatal(err)
	}
	if undo != 1 || redo != 0 {
		t.Errorf("count = %d/%d, want 1/0", undo, redo)
	}
}

func TestHistoryStore_Prunes(t *testing.T) {
	hist := storage.NewHistoryStore(openDB(t), 2)
	undo := []*domain.Template{template(5), template(4), template(3), template(2)}
	if err := hist.Save("doc", undo, []*domain.Template{template(1), template(1), template(1)}); err != nil {
		t.Fatal(err)
	}
	gotUndo, gotRedo, err := hist.Load("doc")
	if err != nil {
		t.Fatal(err)
	}
	if len(gotUndo) != 2 || len(gotRedo) != 2 {
		t.Fatalf("loaded %d/%d entries, want 2/2", len(gotUndo), len(gotRedo))
	}
	if len(gotUndo[0].Blocks) != 5 || len(gotUndo[1].Blocks) != 4 {
		t.Error("pruning dropped the most recent entries instead of the oldest")
	}
}

func TestHistoryStore_Isolation(t *testing.T) {
	hist := storage.NewHistoryStore(openDB(t), 0)
	if err := hist.Save("a", []*domain.Template{template(1)}, nil); err != nil {
		t.Fatal(err)
	}
	if err := hist.Save("b", nil, []*domain.Template{template(1)}); err != nil {
		t.Fatal(err)
	}
	if err := hist.Clear("a"); err != nil {
		t.Fatal(err)
	}
	if undo, _, _ := hist.Count("a"); undo != 0 {
		t.Errorf("a still has %d entries", undo)
	}
	if _, redo, _ := hist.Count("b"); redo != 1 {
		t.Errorf("b lost its entries: %d", redo)
	}
}

// ── approvals ───────────────────────────────────────────────

func TestApprovalStore_Lifecycle(t *testing.T) {
	approvals := storage.NewApprovalStore(openDB(t))
	a := &storage.Approval{ID: "ap-1", Tool: "delete_block", Description: "Delete Frame 1"}
	if err := approvals.Create(a); err != nil {
		t.Fatalf("create: %v", err)
	}
	pending, err := approvals.Pending()
	if err != nil || len(pending) != 1 || pending[0].Metadata != "{}" {
		t.Fatalf("pending = %+v, err %v", pending, err)
	}

	ok, err := approvals.Resolve("ap-1", true)
	if err != nil || !ok {
		t.Fatalf("resolve = %v, %v", ok, err)
	}
	if ok, _ := approvals.Resolve("ap-1", false); ok {
		t.Error("resolved twice")
	}
	status, err := approvals.Status("ap-1")
	if err != nil || status != storage.ApprovalApproved {
		t.Errorf("status = %q, %v", status, err)
	}

	if err := approvals.Delete("ap-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := approvals.Status("ap-1"); !domain.IsCode(err, domain.ErrCodeNotFound) {
		t.Errorf("status after delete: %v", err)
	}
}
