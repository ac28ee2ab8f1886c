package store

import (
	"context"
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed/demo.yaml
var seedFS embed.FS

// SeedFile is a YAML catalog: courses with their topics in order.
type SeedFile struct {
	Courses []SeedCourse `yaml:"courses"`
}

type SeedCourse struct {
	Name   string      `yaml:"name"`
	Topics []SeedTopic `yaml:"topics"`
}

type SeedTopic struct {
	Name string `yaml:"name"`
	Text string `yaml:"text"`
}

// DemoSeed returns the built-in sample catalog.
func DemoSeed() (SeedFile, error) {
	raw, err := seedFS.ReadFile("seed/demo.yaml")
	if err != nil {
		return SeedFile{}, err
	}
	return ParseSeed(raw)
}

// LoadSeedFile reads a catalog from path.
func LoadSeedFile(path string) (SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedFile{}, err
	}
	return ParseSeed(raw)
}

// ParseSeed decodes and checks a catalog.
func ParseSeed(raw []byte) (SeedFile, error) {
	var f SeedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return SeedFile{}, fmt.Errorf("parse seed: %w", err)
	}
	for i, c := range f.Courses {
		if c.Name == "" {
			return SeedFile{}, fmt.Errorf("parse seed: course %d has no name", i+1)
		}
		seen := make(map[string]bool, len(c.Topics))
		for j, t := range c.Topics {
			if t.Name == "" {
				return SeedFile{}, fmt.Errorf("parse seed: %s: topic %d has no name", c.Name, j+1)
			}
			if seen[t.Name] {
				return SeedFile{}, fmt.Errorf("parse seed: %s: duplicate topic %q", c.Name, t.Name)
			}
			seen[t.Name] = true
		}
	}
	return f, nil
}

// Apply upserts every course into repo. Topic positions follow file order.
func (f SeedFile) Apply(ctx context.Context, repo CatalogRepo) ([]Course, error) {
	out := make([]Course, 0, len(f.Courses))
	for _, c := range f.Courses {
		topics := make([]Topic, len(c.Topics))
		for i, t := range c.Topics {
			topics[i] = Topic{Name: t.Name, Position: i + 1, Text: t.Text}
		}
		course, err := repo.SeedCourse(ctx, c.Name, topics)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", c.Name, err)
		}
		out = append(out, *course)
	}
	return out, nil
}
