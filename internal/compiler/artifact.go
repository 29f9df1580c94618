package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"silica/internal/rif"
)

// Bump when the artifact layout changes.
const artifactSchemaVersion uint16 = 1

// artifactEnvelope wraps a module with the schema version so a stale
// artifact fails loudly instead of decoding garbage.
type artifactEnvelope struct {
	Schema uint16      `msgpack:"schema"`
	Module *rif.Module `msgpack:"module"`
}

// SaveModule writes a compiled module to path atomically: encode into a
// temp file in the target directory, then rename over.
func SaveModule(path string, mod *rif.Module) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&artifactEnvelope{Schema: artifactSchemaVersion, Module: mod}); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadModule reads a module artifact written by SaveModule. Loaded objects
// keep signatures for their externals but no definitions.
func LoadModule(path string) (*rif.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var env artifactEnvelope
	if err := msgpack.NewDecoder(f).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if env.Schema != artifactSchemaVersion {
		return nil, fmt.Errorf("artifact %s has schema %d, want %d", path, env.Schema, artifactSchemaVersion)
	}
	if env.Module == nil {
		return nil, errors.New("artifact has no module")
	}
	return env.Module, nil
}
