package scene

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scene document errors.
var (
	ErrInvalidDocument = errors.New("invalid scene document")
	ErrMaterialIndex   = errors.New("material index out of range")
	ErrChannelIndex    = errors.New("UV channel index out of range")
)

// Parse parses a YAML scene document from a byte slice.
func Parse(data []byte) (*Scene, error) {
	var sc Scene
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := sc.checkBounds(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// ParseFile parses a YAML scene document from disk.
func ParseFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}
	return Parse(data)
}

// Marshal encodes the scene as a YAML document.
func (s *Scene) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding scene: %w", err)
	}
	return data, nil
}

// Save writes the scene as a YAML document to disk.
func (s *Scene) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing scene file: %w", err)
	}
	return nil
}

// checkBounds rejects documents with out-of-range indices: mesh material
// references, UV channel keys, slot channel references and channel
// transform sources must all stay within the scene.
func (s *Scene) checkBounds() error {
	for _, m := range s.Meshes {
		if m.MaterialIndex < 0 || m.MaterialIndex >= len(s.Materials) {
			return fmt.Errorf("mesh %q: %w: %d", m.Name, ErrMaterialIndex, m.MaterialIndex)
		}
		for ch := range m.UV {
			if ch < 0 || ch >= MaxUVChannels {
				return fmt.Errorf("mesh %q: %w: %d", m.Name, ErrChannelIndex, ch)
			}
		}
		for dest, ct := range m.ChannelTransforms {
			if dest < 0 || dest >= MaxUVChannels {
				return fmt.Errorf("mesh %q: %w: %d", m.Name, ErrChannelIndex, dest)
			}
			if ct.SourceChannel < 0 || ct.SourceChannel >= MaxUVChannels {
				return fmt.Errorf("mesh %q channel %d: %w: source %d", m.Name, dest, ErrChannelIndex, ct.SourceChannel)
			}
		}
	}
	for i, mat := range s.Materials {
		for _, slot := range mat.Slots {
			if slot.UVChannel < 0 || slot.UVChannel >= MaxUVChannels {
				return fmt.Errorf("material %d (%s) %s slot %d: %w: %d",
					i, mat.Name, slot.Semantic, slot.Index, ErrChannelIndex, slot.UVChannel)
			}
		}
	}
	return nil
}
