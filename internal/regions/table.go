// Package regions holds the region lookup tables consulted by the matching
// engine. Tables are configuration: a default is embedded in the binary and a
// deployment can replace it with its own YAML file.
package regions

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Characteristic is a lifestyle trait a region is known for.
type Characteristic string

// Known characteristics. They share their spelling with the q4 priority answers.
const (
	Nature    Characteristic = "nature"
	Community Characteristic = "community"
	Medical   Characteristic = "medical"
	Education Characteristic = "education"
)

func (c Characteristic) valid() bool {
	switch c {
	case Nature, Community, Medical, Education:
		return true
	}
	return false
}

//go:embed regions.yaml
var defaultYAML []byte

// Table answers membership questions about region labels.
type Table struct {
	characteristics map[string][]Characteristic
	familyFriendly  map[string]struct{}
	urban           map[string]struct{}
	remoteIdeal     map[string]struct{}
}

type tableFile struct {
	Characteristics map[string][]Characteristic `yaml:"characteristics"`
	FamilyFriendly  []string                    `yaml:"family_friendly"`
	Urban           []string                    `yaml:"urban"`
	RemoteIdeal     []string                    `yaml:"remote_ideal"`
}

// Default returns the embedded table.
func Default() *Table {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded region table is invalid: %v", err))
	}
	return t
}

// Load reads a table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read region table %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("region table %s: %w", path, err)
	}
	return t, nil
}

// LoadOrDefault loads path when it is set and falls back to the embedded table otherwise.
func LoadOrDefault(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes a YAML table and rejects unknown characteristics.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse region table: %w", err)
	}

	t := &Table{
		characteristics: make(map[string][]Characteristic, len(f.Characteristics)),
		familyFriendly:  toSet(f.FamilyFriendly),
		urban:           toSet(f.Urban),
		remoteIdeal:     toSet(f.RemoteIdeal),
	}
	for region, traits := range f.Characteristics {
		for _, c := range traits {
			if !c.valid() {
				return nil, fmt.Errorf("region %q: unknown characteristic %q", region, c)
			}
		}
		t.characteristics[normalize(region)] = traits
	}
	return t, nil
}

// HasCharacteristic reports whether region is known for c.
func (t *Table) HasCharacteristic(region string, c Characteristic) bool {
	for _, have := range t.characteristics[normalize(region)] {
		if have == c {
			return true
		}
	}
	return false
}

// Characteristics returns the traits listed for region, or nil.
func (t *Table) Characteristics(region string) []Characteristic {
	return t.characteristics[normalize(region)]
}

// IsFamilyFriendly reports membership in the family-friendly set.
func (t *Table) IsFamilyFriendly(region string) bool {
	return contains(t.familyFriendly, region)
}

// IsUrban reports membership in the urban set.
func (t *Table) IsUrban(region string) bool {
	return contains(t.urban, region)
}

// IsRemoteIdeal reports membership in the remote-work set.
func (t *Table) IsRemoteIdeal(region string) bool {
	return contains(t.remoteIdeal, region)
}

// Regions lists every region named anywhere in the table, sorted.
func (t *Table) Regions() []string {
	seen := make(map[string]struct{})
	for r := range t.characteristics {
		seen[r] = struct{}{}
	}
	for _, set := range []map[string]struct{}{t.familyFriendly, t.urban, t.remoteIdeal} {
		for r := range set {
			seen[r] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

func toSet(regions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		set[normalize(r)] = struct{}{}
	}
	return set
}

func contains(set map[string]struct{}, region string) bool {
	_, ok := set[normalize(region)]
	return ok
}

// normalize only trims whitespace; labels are matched case-sensitively.
func normalize(region string) string {
	return strings.TrimSpace(region)
}
