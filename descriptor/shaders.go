package descriptor

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gogpu/assetpipe/internal/fsutil"
)

// ShaderArtifact describes one compiled shader.
type ShaderArtifact struct {
	ID                string `json:"identifier"`
	Stage             string `json:"stage"`
	BytecodeFile      string `json:"bytecodeFile"` // relative to the manifest's directory
	SourceFingerprint string `json:"sourceFingerprint"`
}

// ShaderManifest lists every compiled shader of a build.
type ShaderManifest struct {
	Version int              `json:"version"`
	Target  string           `json:"target"`
	Shaders []ShaderArtifact `json:"shaders"`
}

// Lookup returns the artifact for id.
func (m *ShaderManifest) Lookup(id string) (ShaderArtifact, bool) {
	for _, s := range m.Shaders {
		if s.ID == id {
			return s, true
		}
	}
	return ShaderArtifact{}, false
}

// WriteShaders atomically writes m to path with shaders sorted by identifier.
func WriteShaders(path string, m *ShaderManifest) error {
	out := *m
	out.Version = FormatVersion
	out.Shaders = append([]ShaderArtifact{}, m.Shaders...)
	sort.Slice(out.Shaders, func(i, j int) bool { return out.Shaders[i].ID < out.Shaders[j].ID })

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("descriptor: encode shaders: %w", err)
	}
	return fsutil.WriteFileAtomic(path, append(data, '\n'), 0o644)
}

// ReadShaders reads the shader manifest at path.
func ReadShaders(path string) (*ShaderManifest, error) {
	data, err := fsutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(path, data); err != nil {
		return nil, err
	}
	if err := requireKeys(path, data, "shaders"); err != nil {
		return nil, err
	}
	var m ShaderManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return &m, nil
}
