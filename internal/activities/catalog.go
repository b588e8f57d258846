// internal/activities/catalog.go
package activities

import (
	"fmt"

	"mergington-activities/internal/models"
	"mergington-activities/pkg/registry"
)

// LoadCatalog returns the catalog at path, or the embedded default when path is empty.
func LoadCatalog(path string) (models.Catalog, error) {
	var (
		reg *registry.ActivityRegistry
		err error
	)
	if path == "" {
		reg, err = registry.Default()
	} else {
		reg, err = registry.LoadRegistry(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return FromRegistry(reg), nil
}

// FromRegistry converts a catalog document to the runtime model.
func FromRegistry(reg *registry.ActivityRegistry) models.Catalog {
	out := make(models.Catalog, 0, len(reg.Activities))
	for _, a := range reg.Activities {
		participants := make([]string, len(a.Participants))
		copy(participants, a.Participants)
		out = append(out, models.Activity{
			Name:            a.Name,
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    participants,
		})
	}
	return out
}
