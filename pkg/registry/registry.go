// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed activities.json
var defaultCatalog []byte

// Default returns the built-in Mergington High School catalog.
func Default() (*ActivityRegistry, error) {
	return Parse(defaultCatalog)
}

// LoadRegistry reads, validates and decodes a catalog file.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Parse validates data against the catalog schema and decodes it.
func Parse(data []byte) (*ActivityRegistry, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(catalogSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("catalog does not match schema: %s", strings.Join(errs, "; "))
	}

	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks the invariants the schema cannot express.
func (r *ActivityRegistry) Validate() error {
	seen := make(map[string]struct{}, len(r.Activities))
	for i, a := range r.Activities {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("activity %d: name is empty", i)
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("activity %q is defined more than once", a.Name)
		}
		seen[a.Name] = struct{}{}
		if a.MaxParticipants < 1 {
			return fmt.Errorf("activity %q: max_participants must be positive", a.Name)
		}
	}
	return nil
}

// Add appends an activity, refusing duplicates.
func (r *ActivityRegistry) Add(a Activity) error {
	for _, existing := range r.Activities {
		if existing.Name == a.Name {
			return fmt.Errorf("activity %q already exists", a.Name)
		}
	}
	if a.Participants == nil {
		a.Participants = []string{}
	}
	r.Activities = append(r.Activities, a)
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return r.Validate()
}

// Save writes the catalog as indented JSON.
func (r *ActivityRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
