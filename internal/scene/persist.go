package scene

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/google/renameio/v2"
)

// Save writes the scene to path as a gzip-compressed gob stream. The file is
// placed atomically so a crashed writer never leaves a partial scene behind.
func (s *Scene) Save(path string) error {
	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	defer pending.Cleanup()

	zw := gzip.NewWriter(pending)
	if err := gob.NewEncoder(zw).Encode(s); err != nil {
		return fmt.Errorf("save scene: encode: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("save scene: compress: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	return nil
}

// Load reads a scene previously written with Save.
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	defer zr.Close()

	var s Scene
	if err := gob.NewDecoder(zr).Decode(&s); err != nil {
		return nil, fmt.Errorf("load scene: decode: %w", err)
	}
	return &s, nil
}
