package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"silica/internal/source"
)

func TestArtifactRoundTrip(t *testing.T) {
	mod, err := CompileDesign(source.NewFileSet(), fanoutDesign(), Options{})
	if err != nil {
		t.Fatalf("CompileDesign: %v", err)
	}
	path := filepath.Join(t.TempDir(), "design.rifm")
	if err := SaveModule(path, mod); err != nil {
		t.Fatalf("SaveModule: %v", err)
	}
	loaded, err := LoadModule(path)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if loaded.String() != mod.String() {
		t.Fatalf("round trip diverges:\n--- saved\n%s\n--- loaded\n%s", mod, loaded)
	}

	// definitions do not travel; the loaded externals are signatures only
	for _, fn := range loaded.SortedFuncs() {
		for _, ext := range loaded.Objects[fn].Externals {
			if ext.InSource() {
				t.Fatalf("loaded external %s carries a definition", ext.Name)
			}
			if len(ext.Params) == 0 && ext.Ret.Bits() == 0 {
				t.Fatalf("loaded external %s lost its signature", ext.Name)
			}
		}
	}
}

func TestArtifactSchemaGuard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.rifm")
	raw, err := msgpack.Marshal(&artifactEnvelope{Schema: 99})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err = LoadModule(path)
	if err == nil {
		t.Fatal("stale artifact loaded")
	}
	if !strings.Contains(err.Error(), "schema 99") {
		t.Fatalf("error %q does not name the stale schema", err)
	}
}

func TestArtifactMissingFile(t *testing.T) {
	if _, err := LoadModule(filepath.Join(t.TempDir(), "absent.rifm")); err == nil {
		t.Fatal("missing artifact loaded")
	}
}

func TestSaveModuleCreatesDirs(t *testing.T) {
	mod, err := CompileDesign(source.NewFileSet(), fanoutDesign(), Options{})
	if err != nil {
		t.Fatalf("CompileDesign: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out", "nested", "design.rifm")
	if err := SaveModule(path, mod); err != nil {
		t.Fatalf("SaveModule: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
}
