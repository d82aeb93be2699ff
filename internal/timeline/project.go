package timeline

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const ProjectVersion = "1.0.0"

// Project is the on-disk envelope around a timeline. Field names and nesting
// are the binding contract with stored project files; round-trip through
// Marshal/Unmarshal is exact for every field.
type Project struct {
	Version    string    `json:"version"`
	Timeline   *Timeline `json:"timeline"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

func NewProject(t *Timeline) *Project {
	now := time.Now().UTC()
	return &Project{
		Version:    ProjectVersion,
		Timeline:   t,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

func MarshalProject(p *Project) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return data, nil
}

// UnmarshalProject parses a project document. Dangling media references are
// deliberately not checked here; a project whose media has gone missing must
// still load, and operations that need the media fail later.
func UnmarshalProject(data []byte) (*Project, error) {
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if p.Timeline == nil {
		return nil, fmt.Errorf("%w: project has no timeline", ErrSerialization)
	}
	for _, track := range p.Timeline.Tracks {
		if track.Clips == nil {
			track.Clips = []*Clip{}
		}
	}
	return &p, nil
}

func SaveProject(p *Project, path string) error {
	data, err := MarshalProject(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	return nil
}

func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	return UnmarshalProject(data)
}
