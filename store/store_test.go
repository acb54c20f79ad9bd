package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/derktes/ir-remote/ir"
	"github.com/derktes/ir-remote/logging"
	"github.com/derktes/ir-remote/remote"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T, backend Backend) *Store {
	t.Helper()
	s, err := Open(context.Background(), backend, logging.Discard(), WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleConfig(id, name string) remote.Config {
	return remote.Config{
		ID:       id,
		Name:     name,
		Protocol: ir.ProtocolNEC,
		Header:   0x20DF,
		Keys: remote.Catalog{
			remote.NewKey("KEY_POWER", 0x10, "Power", remote.CategoryFunction),
			remote.NewKey("KEY_VOLUMEUP", 0x40, "Vol+", remote.CategoryVolume),
		},
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC),
	}
}

func ids(configs []remote.Config) []string {
	out := make([]string, len(configs))
	for i, c := range configs {
		out[i] = c.ID
	}
	return out
}

func TestGetDefaultFallsBackToBuiltin(t *testing.T) {
	s := openTestStore(t, NewMemoryBackend())

	def := s.GetDefault()
	if def.ID != remote.BuiltinID || !def.IsDefault {
		t.Fatalf("default = %s (default=%v), want builtin", def.ID, def.IsDefault)
	}
	got, ok := s.Get(remote.BuiltinID)
	if !ok || got.Name != remote.Builtin().Name {
		t.Fatalf("Get(builtin) = %v, %v", got.Name, ok)
	}
	if all := s.ListAll(); !reflect.DeepEqual(ids(all), []string{remote.BuiltinID}) {
		t.Fatalf("ListAll = %v", ids(all))
	}
}

func TestSaveThenGet(t *testing.T) {
	s := openTestStore(t, NewMemoryBackend())
	cfg := sampleConfig("living-room", "Living room TV")

	saved, err := s.Save(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !saved.UpdatedAt.Equal(testNow) {
		t.Fatalf("updated_at = %v, want %v", saved.UpdatedAt, testNow)
	}

	got, ok := s.Get(cfg.ID)
	if !ok {
		t.Fatal("saved config not found")
	}
	want := cfg.ToRecord()
	want.UpdatedAt = remote.Millis(testNow)
	if !reflect.DeepEqual(got.ToRecord(), want) {
		t.Fatalf("Get = %+v\nwant %+v", got.ToRecord(), want)
	}
}

func TestSaveSetsMissingCreatedAt(t *testing.T) {
	s := openTestStore(t, NewMemoryBackend())
	cfg := sampleConfig("a", "A")
	cfg.CreatedAt = time.Time{}

	saved, err := s.Save(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !saved.CreatedAt.Equal(testNow) {
		t.Fatalf("created_at = %v, want %v", saved.CreatedAt, testNow)
	}
}

func TestSaveRejectsInvalidConfigs(t *testing.T) {
	s := openTestStore(t, NewMemoryBackend())

	if _, err := s.Save(context.Background(), sampleConfig("", "x")); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("empty id: err = %v", err)
	}

	dup := sampleConfig("dup", "Dup")
	dup.Keys = append(dup.Keys, remote.NewKey("KEY_POWER", 0x11, "", remote.CategoryFunction))
	if _, err := s.Save(context.Background(), dup); !errors.Is(err, remote.ErrDuplicateKeyName) {
		t.Fatalf("duplicate key: err = %v", err)
	}
	if _, ok := s.Get("dup"); ok {
		t.Fatal("rejected config was stored")
	}
}

func TestListAllPutsDefaultFirst(t *testing.T) {
	s := openTestStore(t, NewMemoryBackend())
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := s.Save(ctx, sampleConfig(id, strings.ToUpper(id))); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}
	if got := ids(s.ListAll()); !reflect.DeepEqual(got, []string{remote.BuiltinID, "a", "b", "c"}) {
		t.Fatalf("ListAll = %v", got)
	}

	b := sampleConfig("b", "B")
	b.IsDefault = true
	if _, err := s.Save(ctx, b); err != nil {
		t.Fatalf("Save default: %v", err)
	}
	if got := ids(s.ListAll()); !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Fatalf("ListAll = %v", got)
	}
	if md := s.Metadata(); len(md) != 3 || md[0].ID != "b" || md[0].Version != remote.DefaultVersion {
		t.Fatalf("Metadata = %+v", md)
	}
}

func TestSaveDemotesPreviousDefault(t *testing.T) {
	backend := NewMemoryBackend()
	s := openTestStore(t, backend)
	ctx := context.Background()

	first := sampleConfig("first", "First")
	first.IsDefault = true
	second := sampleConfig("second", "Second")
	second.IsDefault = true

	if _, err := s.Save(ctx, first); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(ctx, second); err != nil {
		t.Fatal(err)
	}

	if def := s.GetDefault(); def.ID != "second" {
		t.Fatalf("default = %s, want second", def.ID)
	}
	got, _ := s.Get("first")
	if got.IsDefault {
		t.Fatal("previous default still flagged")
	}

	stored, _ := backend.Load(ctx)
	flagged := 0
	for _, cfg := range stored {
		if cfg.IsDefault {
			flagged++
		}
	}
	if flagged != 1 {
		t.Fatalf("backend holds %d defaults, want 1", flagged)
	}
}

func TestDeleteDefaultIsRejected(t *testing.T) {
	s := openTestStore(t, NewMemoryBackend())
	ctx := context.Background()

	if err := s.Delete(ctx, remote.BuiltinID); !errors.Is(err, ErrCannotDeleteDefault) {
		t.Fatalf("delete builtin: err = %v", err)
	}

	def := sampleConfig("mine", "Mine")
	def.IsDefault = true
	if _, err := s.Save(ctx, def); err != nil {
		t.Fatal(err)
	}
	before := s.ListAll()
	if err := s.Delete(ctx, "mine"); !errors.Is(err, ErrCannotDeleteDefault) {
		t.Fatalf("delete default: err = %v", err)
	}
	if after := s.ListAll(); !reflect.DeepEqual(after, before) {
		t.Fatal("store changed after rejected delete")
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t, NewMemoryBackend())
	ctx := context.Background()

	if err := s.Delete(ctx, "missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("delete unknown: err = %v", err)
	}
	if _, err := s.Save(ctx, sampleConfig("gone", "Gone")); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.Get("gone"); ok {
		t.Fatal("deleted config still present")
	}
}

// failingBackend fails every Put of one id.
type failingBackend struct {
	*MemoryBackend
	failID string
}

func (b *failingBackend) Put(ctx context.Context, cfg remote.Config) error {
	if cfg.ID == b.failID {
		return errors.New("disk full")
	}
	return b.MemoryBackend.Put(ctx, cfg)
}

func TestStoredBuiltinReplacesFallback(t *testing.T) {
	s := openTestStore(t, NewMemoryBackend())
	ctx := context.Background()

	edited := remote.Builtin()
	edited.IsDefault = false
	edited.Name = "edited factory"
	if _, err := s.Save(ctx, edited); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok := s.Get(remote.BuiltinID)
	if !ok || got.Name != "edited factory" {
		t.Fatalf("Get = %q, %v", got.Name, ok)
	}
	all := s.ListAll()
	if len(all) != 1 || all[0].Name != "edited factory" {
		t.Fatalf("ListAll = %v (first %q)", ids(all), all[0].Name)
	}
	if md := s.Metadata(); len(md) != 1 || md[0].Name != "edited factory" {
		t.Fatalf("Metadata = %+v", md)
	}
	if def := s.GetDefault(); def.Name != "edited factory" {
		t.Fatalf("GetDefault = %q", def.Name)
	}
	if err := s.Delete(ctx, remote.BuiltinID); !errors.Is(err, ErrCannotDeleteDefault) {
		t.Fatalf("Delete effective default err = %v", err)
	}

	tv := sampleConfig("tv", "TV")
	tv.IsDefault = true
	if _, err := s.Save(ctx, tv); err != nil {
		t.Fatalf("Save tv: %v", err)
	}
	if got := ids(s.ListAll()); !reflect.DeepEqual(got, []string{"tv", remote.BuiltinID}) {
		t.Fatalf("ListAll = %v", got)
	}
	if err := s.Delete(ctx, remote.BuiltinID); err != nil {
		t.Fatalf("Delete stored builtin: %v", err)
	}
	if got := ids(s.ListAll()); !reflect.DeepEqual(got, []string{"tv"}) {
		t.Fatalf("ListAll after delete = %v", got)
	}
}

func TestFailedDefaultSaveKeepsPreviousDefault(t *testing.T) {
	backend := &failingBackend{MemoryBackend: NewMemoryBackend(), failID: "new"}
	s := openTestStore(t, backend)
	ctx := context.Background()

	old := sampleConfig("old", "Old")
	old.IsDefault = true
	if _, err := s.Save(ctx, old); err != nil {
		t.Fatalf("Save old: %v", err)
	}

	next := sampleConfig("new", "New")
	next.IsDefault = true
	if _, err := s.Save(ctx, next); err == nil {
		t.Fatal("Save succeeded on a failing backend")
	}
	if def := s.GetDefault(); def.ID != "old" || !def.IsDefault {
		t.Fatalf("GetDefault = %s (default=%v), want old", def.ID, def.IsDefault)
	}
	if _, ok := s.Get("new"); ok {
		t.Fatal("failed save is cached")
	}

	stored, err := backend.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || !stored[0].IsDefault {
		t.Fatalf("backend holds %+v, want old still flagged", stored)
	}
}

func TestExportImport(t *testing.T) {
	s := openTestStore(t, NewMemoryBackend())
	cfg := sampleConfig("exported", "Exported")
	cfg.UpdatedAt = testNow

	text, err := s.Export(cfg)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(text, `"key_name": "KEY_POWER"`) {
		t.Fatalf("export missing keys: %s", text)
	}
	if !strings.Contains(text, "\n  \"id\": \"exported\"") {
		t.Fatalf("export is not indented: %s", text)
	}

	imported, err := s.Import(context.Background(), text)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !reflect.DeepEqual(imported.ToRecord(), cfg.ToRecord()) {
		t.Fatalf("Import = %+v\nwant %+v", imported.ToRecord(), cfg.ToRecord())
	}
	if _, ok := s.Get("exported"); !ok {
		t.Fatal("imported config not stored")
	}
}

func TestImportErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
		kind error
	}{
		{"not json", "{", ErrImportMalformed},
		{"wrong type", `{"id": 5, "name": "x"}`, ErrImportMalformed},
		{"missing id", `{"name": "x", "keys": []}`, ErrImportMissingFields},
		{"missing name", `{"id": "x", "keys": []}`, ErrImportMissingFields},
		{"header out of range", `{"id": "x", "name": "x", "header": 70000}`, ErrImportMalformed},
		{"unknown category", `{"id": "x", "name": "x", "keys": [{"key_name": "K", "key_code": 1, "category": "bogus"}]}`, ErrImportMalformed},
		{"duplicate key", `{"id": "x", "name": "x", "keys": [{"key_name": "K", "key_code": 1}, {"key_name": "K", "key_code": 2}]}`, ErrImportMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := openTestStore(t, NewMemoryBackend())
			_, err := s.Import(context.Background(), tc.text)
			var importErr *ImportError
			if !errors.As(err, &importErr) {
				t.Fatalf("err = %v, want *ImportError", err)
			}
			if !errors.Is(err, tc.kind) {
				t.Fatalf("err = %v, want kind %v", err, tc.kind)
			}
			if len(s.ListAll()) != 1 {
				t.Fatal("failed import changed the store")
			}
		})
	}
}

func TestConcurrentSaves(t *testing.T) {
	s := openTestStore(t, NewMemoryBackend())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cfg := sampleConfig(string(rune('a'+i)), "cfg")
			cfg.IsDefault = i%2 == 0
			if _, err := s.Save(ctx, cfg); err != nil {
				t.Errorf("Save: %v", err)
			}
			_ = s.ListAll()
		}(i)
	}
	wg.Wait()

	flagged := 0
	for _, cfg := range s.ListAll() {
		if cfg.IsDefault {
			flagged++
		}
	}
	if flagged != 1 {
		t.Fatalf("%d defaults flagged, want 1", flagged)
	}
	if got := len(s.ListAll()); got != 20 {
		t.Fatalf("ListAll has %d entries, want 20", got)
	}
}

func TestOpenKeepsFirstStoredDefault(t *testing.T) {
	a := sampleConfig("a", "A")
	a.IsDefault = true
	b := sampleConfig("b", "B")
	b.IsDefault = true

	s := openTestStore(t, NewMemoryBackend(a, b))
	if def := s.GetDefault(); def.ID != "a" {
		t.Fatalf("default = %s, want a", def.ID)
	}
	if got, _ := s.Get("b"); got.IsDefault {
		t.Fatal("second default still flagged")
	}
}

func testPersistence(t *testing.T, open func(t *testing.T) Backend) {
	t.Helper()
	ctx := context.Background()

	s, err := Open(ctx, open(t), logging.Discard(), WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	first := sampleConfig("first", "First")
	second := sampleConfig("second", "Second")
	second.CreatedAt = first.CreatedAt.Add(time.Hour)
	second.IsDefault = true
	third := sampleConfig("third", "Third")
	third.CreatedAt = first.CreatedAt.Add(2 * time.Hour)
	for _, cfg := range []remote.Config{first, second, third} {
		if _, err := s.Save(ctx, cfg); err != nil {
			t.Fatalf("Save %s: %v", cfg.ID, err)
		}
	}
	if err := s.Delete(ctx, "third"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	want := s.ListAll()
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(ctx, open(t), logging.Discard())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got := reopened.ListAll()
	if !reflect.DeepEqual(ids(got), []string{"second", "first"}) {
		t.Fatalf("ListAll after reopen = %v", ids(got))
	}
	for i := range want {
		if !reflect.DeepEqual(got[i].ToRecord(), want[i].ToRecord()) {
			t.Fatalf("config %s changed across reopen:\n got %+v\nwant %+v", want[i].ID, got[i].ToRecord(), want[i].ToRecord())
		}
	}
}

func TestSQLiteBackendPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "configs.db")
	testPersistence(t, func(t *testing.T) Backend {
		b, err := OpenSQLite(context.Background(), path)
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		return b
	})
}

func TestDirBackendPersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "configs")
	testPersistence(t, func(t *testing.T) Backend {
		b, err := OpenDir(dir)
		if err != nil {
			t.Fatalf("OpenDir: %v", err)
		}
		return b
	})

	if _, err := os.Stat(filepath.Join(dir, "first.json")); err != nil {
		t.Fatalf("record file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "third.json")); !os.IsNotExist(err) {
		t.Fatalf("deleted record still on disk: %v", err)
	}
}

func TestDirBackendRejectsPathIDs(t *testing.T) {
	b, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	for _, id := range []string{"../escape", "a/b", ".hidden", ""} {
		if err := b.Put(context.Background(), sampleConfig(id, "x")); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Put(%q): err = %v, want ErrInvalidID", id, err)
		}
	}
}

func TestSeedFile(t *testing.T) {
	s := openTestStore(t, NewMemoryBackend())
	ctx := context.Background()

	existing := sampleConfig("existing", "Existing")
	if _, err := s.Save(ctx, existing); err != nil {
		t.Fatal(err)
	}

	seed := `[
  {"id": "existing", "name": "Overwritten?", "protocol": 1, "header": 1, "keys": []},
  {"id": "new", "name": "New", "protocol": 1, "header": 34960,
   "keys": [{"key_name": "KEY_POWER", "key_code": 1, "display_name": "Power", "category": "function"}]}
]`
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	added, err := s.SeedFile(ctx, path)
	if err != nil {
		t.Fatalf("SeedFile: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}
	if got, _ := s.Get("existing"); got.Name != "Existing" {
		t.Fatalf("seed overwrote existing config: %q", got.Name)
	}
	got, ok := s.Get("new")
	if !ok || got.Header != 0x8890 || len(got.Keys) != 1 {
		t.Fatalf("seeded config = %+v, %v", got, ok)
	}
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, kind := range []string{BackendMemory, BackendDir, BackendSQLite} {
		b, err := OpenBackend(ctx, kind, filepath.Join(dir, kind))
		if err != nil {
			t.Fatalf("OpenBackend(%s): %v", kind, err)
		}
		if err := b.Close(); err != nil {
			t.Fatalf("Close(%s): %v", kind, err)
		}
	}
	if _, err := OpenBackend(ctx, "etcd", dir); err == nil {
		t.Fatal("unknown backend accepted")
	}
}
