// cmd/tools/catalog-tool/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"mergington-activities/pkg/registry"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const defaultCatalogPath = "pkg/registry/activities.json"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		help(out)
		return fmt.Errorf("no command given")
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		path := fs.String("path", defaultCatalogPath, "Path to catalog file")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		reg, err := registry.LoadRegistry(*path)
		if err != nil {
			return fmt.Errorf("catalog validation failed: %w", err)
		}
		fmt.Fprintf(out, "Catalog validation passed: %d activities.\n", len(reg.Activities))
		return nil

	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		path := fs.String("path", defaultCatalogPath, "Path to catalog file")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		reg, err := registry.LoadRegistry(*path)
		if err != nil {
			return err
		}
		listActivities(reg, out)
		return nil

	case "add":
		fs := flag.NewFlagSet("add", flag.ContinueOnError)
		path := fs.String("path", defaultCatalogPath, "Path to catalog file")
		name := fs.String("name", "", "Activity name (e.g., Chess Club)")
		description := fs.String("description", "", "Description")
		schedule := fs.String("schedule", "", "Schedule (e.g., Fridays, 3:30 PM - 5:00 PM)")
		maxParticipants := fs.Int("max", 0, "Maximum participants")
		participants := fs.String("participants", "", "Comma-separated participant emails")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		activity := registry.Activity{
			Name:            strings.TrimSpace(*name),
			Description:     *description,
			Schedule:        *schedule,
			MaxParticipants: *maxParticipants,
			Participants:    splitEmails(*participants),
		}
		if err := validateActivity(activity); err != nil {
			return err
		}

		reg, err := loadOrCreate(*path)
		if err != nil {
			return err
		}
		if err := reg.Add(activity); err != nil {
			return err
		}
		if err := reg.Save(*path); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added activity: %s\n", activity.Name)
		return nil

	case "update":
		fs := flag.NewFlagSet("update", flag.ContinueOnError)
		path := fs.String("path", defaultCatalogPath, "Path to catalog file")
		name := fs.String("name", "", "Activity name to update")
		field := fs.String("field", "", "Field to update (description, schedule, max_participants)")
		value := fs.String("value", "", "New value for the field")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *name == "" || *field == "" {
			return fmt.Errorf("name and field are required for update")
		}
		if err := updateActivity(*path, *name, *field, *value); err != nil {
			return err
		}
		fmt.Fprintf(out, "Updated activity %s, field %s to %s\n", *name, *field, *value)
		return nil

	case "help":
		help(out)
		return nil

	default:
		help(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func validateActivity(a registry.Activity) error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required),
		validation.Field(&a.Description, validation.Required),
		validation.Field(&a.Schedule, validation.Required),
		validation.Field(&a.MaxParticipants, validation.Required, validation.Min(1)),
		validation.Field(&a.Participants, validation.Each(validation.Required, is.EmailFormat)),
	)
}

func splitEmails(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func loadOrCreate(path string) (*registry.ActivityRegistry, error) {
	reg, err := registry.LoadRegistry(path)
	if err == nil {
		return reg, nil
	}
	if os.IsNotExist(err) {
		return &registry.ActivityRegistry{
			Version:     "1.0.0",
			LastUpdated: time.Now().UTC().Format(time.RFC3339),
			Activities:  []registry.Activity{},
		}, nil
	}
	return nil, fmt.Errorf("failed to load catalog: %w", err)
}

func updateActivity(path, name, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	idx := -1
	for i := range reg.Activities {
		if reg.Activities[i].Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("activity %q not found", name)
	}

	a := &reg.Activities[idx]
	switch field {
	case "description":
		a.Description = value
	case "schedule":
		a.Schedule = value
	case "max_participants":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid max_participants value: %w", err)
		}
		a.MaxParticipants = n
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	if err := validateActivity(*a); err != nil {
		return err
	}

	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return reg.Save(path)
}

func listActivities(reg *registry.ActivityRegistry, out io.Writer) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSCHEDULE\tENROLLED\tMAX")
	for _, a := range reg.Activities {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", a.Name, a.Schedule, len(a.Participants), a.MaxParticipants)
	}
	_ = w.Flush()
}

func help(out io.Writer) {
	fmt.Fprintln(out, `Usage: catalog-tool <command> [options]

Commands:
  validate  Validate a catalog file against the schema
  list      List activities in a catalog file
  add       Add an activity
  update    Update a field of an existing activity
  help      Show this help

Every command accepts -path (default `+defaultCatalogPath+`).`)
}
