package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"canvas/internal/domain"
	"canvas/internal/geometry"
	"canvas/internal/storage"
)

type testEnv struct {
	dir        string
	configPath string
	dbPath     string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf("[storage]\ndata_dir = %q\n\n[autosave]\nenabled = false\n", dir)
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return testEnv{dir: dir, configPath: path, dbPath: filepath.Join(dir, "canvas.db")}
}

func (e testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := New(io.Discard).RootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e testEnv) writeTemplate(t *testing.T, name string, blocks ...*domain.Block) string {
	t.Helper()
	tmpl := &domain.Template{Size: domain.Size{Width: 640, Height: 480}, Blocks: blocks}
	data, err := json.Marshal(tmpl)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func (e testEnv) openDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(e.dbPath)
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func twoFrames() []*domain.Block {
	a := domain.NewFrameBlock("A", 0, 0, 50, 50)
	a.ID = "a"
	b := domain.NewFrameBlock("B", 20, 0, 50, 50)
	b.ID = "b"
	return []*domain.Block{a, b}
}

func TestValidate(t *testing.T) {
	env := newTestEnv(t)
	good := env.writeTemplate(t, "good.json", twoFrames()...)

	out, err := env.run(t, "validate", good)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "(2 blocks)") {
		t.Errorf("output = %q, want block count", out)
	}

	bad := filepath.Join(env.dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"size":{"width":1,"height":1},"blocks":[{"id":"x","type":"circle"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = env.run(t, "validate", good, bad)
	if err == nil {
		t.Fatal("expected error for invalid template")
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("err = %v", err)
	}
	if !strings.Contains(out, "bad.json") {
		t.Errorf("output = %q, want failing path", out)
	}
}

func TestBounds(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeTemplate(t, "t.json", twoFrames()...)

	tests := []struct {
		name string
		ids  []string
		want geometry.Rect
	}{
		{"all blocks", nil, geometry.Rect{X: -20, Y: -20, Width: 110, Height: 90}},
		{"one block", []string{"b"}, geometry.Rect{X: 0, Y: -20, Width: 90, Height: 90}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.run(t, append([]string{"bounds", path}, tt.ids...)...)
			if err != nil {
				t.Fatalf("bounds: %v", err)
			}
			var got geometry.Rect
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("decode %q: %v", out, err)
			}
			if got != tt.want {
				t.Errorf("bounds = %+v, want %+v", got, tt.want)
			}
		})
	}

	_, err := env.run(t, "bounds", path, "missing")
	if !domain.IsCode(err, domain.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestInfoJSON(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeTemplate(t, "t.json", twoFrames()...)

	out, err := env.run(t, "info", "--json", path)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	var info templateInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(info.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(info.Blocks))
	}
	if info.Blocks[1].Box != (geometry.Rect{X: 20, Y: 0, Width: 50, Height: 50}) {
		t.Errorf("box = %+v", info.Blocks[1].Box)
	}
	if info.Fill != nil {
		t.Errorf("fill = %+v, want none without a background", info.Fill)
	}
	if info.Bounds == nil || info.Bounds.Width != 110 {
		t.Errorf("bounds = %+v", info.Bounds)
	}
}

func TestInfoGradientBackground(t *testing.T) {
	env := newTestEnv(t)
	tmpl := &domain.Template{
		Size:       domain.Size{Width: 640, Height: 480},
		Background: "linear-gradient(to right, #000000 0%, #ffffff 100%)",
		Blocks:     twoFrames(),
	}
	data, err := json.Marshal(tmpl)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(env.dir, "gradient.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := env.run(t, "info", "--json", path)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	var info templateInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	f := info.Fill
	if f == nil || len(f.Stops) != 2 {
		t.Fatalf("fill = %+v, want two stops", f)
	}
	if f.Stops[0].Color != "#000000" || f.Stops[1].Color != "#ffffff" || f.Stops[1].Offset != 1 {
		t.Errorf("stops = %+v", f.Stops)
	}
	if math.Abs(f.Start.X) > 1e-6 || math.Abs(f.End.X-640) > 1e-6 {
		t.Errorf("to right should span the canvas width, got %+v → %+v", f.Start, f.End)
	}

	out, err = env.run(t, "info", path)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if !strings.Contains(out, "gradient") || !strings.Contains(out, "#ffffff") {
		t.Errorf("table output missing gradient:\n%s", out)
	}
}

func TestInfoTable(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeTemplate(t, "t.json", twoFrames()...)

	out, err := env.run(t, "info", path)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, want := range []string{"640 × 480", "frame", "20.0,0.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDocuments(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "documents")
	if err != nil {
		t.Fatalf("documents: %v", err)
	}
	if !strings.Contains(out, "No documents") {
		t.Errorf("output = %q", out)
	}

	db := env.openDB(t)
	doc := &storage.Document{
		ID:       "doc-1",
		Name:     "Poster",
		Template: &domain.Template{Size: domain.Size{Width: 100, Height: 100}, Blocks: twoFrames()},
	}
	if err := storage.NewDocumentStore(db).Save(doc); err != nil {
		t.Fatal(err)
	}
	db.Close()

	out, err = env.run(t, "documents", "--json")
	if err != nil {
		t.Fatalf("documents: %v", err)
	}
	var docs []storage.DocumentSummary
	if err := json.Unmarshal([]byte(out), &docs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "Poster" || docs[0].Blocks != 2 {
		t.Errorf("docs = %+v", docs)
	}
}

func TestApprovals(t *testing.T) {
	env := newTestEnv(t)

	db := env.openDB(t)
	approvals := storage.NewApprovalStore(db)
	for _, id := range []string{"ap-1", "ap-2"} {
		if err := approvals.Create(&storage.Approval{ID: id, Tool: "delete_block", Description: "Delete block " + id}); err != nil {
			t.Fatal(err)
		}
	}
	db.Close()

	out, err := env.run(t, "approvals")
	if err != nil {
		t.Fatalf("approvals: %v", err)
	}
	if !strings.Contains(out, "ap-1") || !strings.Contains(out, "Delete block ap-2") {
		t.Errorf("output = %q", out)
	}

	if _, err := env.run(t, "approve", "ap-1"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := env.run(t, "reject", "ap-2"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := env.run(t, "approve", "ap-1"); !domain.IsCode(err, domain.ErrCodeNotFound) {
		t.Errorf("second approve err = %v, want NOT_FOUND", err)
	}

	db = env.openDB(t)
	defer db.Close()
	approvals = storage.NewApprovalStore(db)
	tests := []struct {
		id   string
		want string
	}{
		{"ap-1", storage.ApprovalApproved},
		{"ap-2", storage.ApprovalRejected},
	}
	for _, tt := range tests {
		got, err := approvals.Status(tt.id)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("%s status = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestConfigErrorSurfaces(t *testing.T) {
	env := newTestEnv(t)
	if err := os.WriteFile(env.configPath, []byte("[canvas]\nwidth = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := env.run(t, "documents")
	if !domain.IsCode(err, domain.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}
