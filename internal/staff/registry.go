// Package staff loads the anesthesiologist registry: identifiers, display
// names, aliases, role capabilities, and active date ranges. It is
// grounded on original_source's data/staff.py, translated into a
// CSV-backed Go registry.
package staff

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// Placeholder is the reserved identifier for an unfilled slot.
const Placeholder = "X"

// AdminIdentifier marks an unfilled admin slot in a derived day's Admin
// list (the raw shift records carry only an admin count).
const AdminIdentifier = "AD"

// Physician is one member of the registry.
type Physician struct {
	ID           string
	Name         string
	Aliases      []string
	CanBeCharge  bool
	CanBeCardiac bool
	Start        time.Time
	End          time.Time
}

// ActiveDuring reports whether the physician's active interval intersects
// [from, to].
func (p Physician) ActiveDuring(from, to time.Time) bool {
	return !p.Start.After(to) && !p.End.Before(from)
}

// placeholderPhysician is the reserved "X" entry, always present.
func placeholderPhysician() Physician {
	return Physician{ID: Placeholder, Name: "Placeholder"}
}

// Registry is the authoritative, loaded staff list.
type Registry struct {
	all         []Physician
	byID        map[string]Physician
	aliasIndex  map[string]string // lowercased name/alias -> ID
}

// Load reads the CSV-shaped staff file:
// (id, cardiac_bool, charge_bool, name, alias1;alias2;..., start_date, end_date).
// A header row is required. Duplicate identifiers are fatal.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open staff file: %w", err)
	}
	defer f.Close()
	return load(f)
}

func load(r io.Reader) (*Registry, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read staff csv: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("staff csv missing header row")
	}
	rows = rows[1:] // skip header

	reg := &Registry{
		byID:       map[string]Physician{},
		aliasIndex: map[string]string{},
	}

	for i, row := range rows {
		if len(row) < 7 {
			return nil, fmt.Errorf("staff csv row %d: expected 7 columns, got %d", i+2, len(row))
		}
		id := strings.TrimSpace(row[0])
		if _, exists := reg.byID[id]; exists {
			return nil, fmt.Errorf("staff csv row %d: duplicate physician id %q", i+2, id)
		}

		start, err := parseDateOrMax(row[5])
		if err != nil {
			return nil, fmt.Errorf("staff csv row %d: start date: %w", i+2, err)
		}
		end, err := parseDateOrMax(row[6])
		if err != nil {
			return nil, fmt.Errorf("staff csv row %d: end date: %w", i+2, err)
		}

		var aliases []string
		if row[4] != "" {
			aliases = strings.Split(row[4], ";")
		}

		p := Physician{
			ID:           id,
			CanBeCardiac: strings.EqualFold(row[1], "TRUE"),
			CanBeCharge:  strings.EqualFold(row[2], "TRUE"),
			Name:         row[3],
			Aliases:      aliases,
			Start:        start,
			End:          end,
		}
		reg.all = append(reg.all, p)
		reg.byID[p.ID] = p
		reg.aliasIndex[strings.ToLower(p.ID)] = p.ID
		reg.aliasIndex[strings.ToLower(p.Name)] = p.ID
		for _, a := range aliases {
			reg.aliasIndex[strings.ToLower(strings.TrimSpace(a))] = p.ID
		}
	}

	ph := placeholderPhysician()
	reg.byID[ph.ID] = ph
	reg.aliasIndex[strings.ToLower(ph.ID)] = ph.ID

	return reg, nil
}

func parseDateOrMax(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", s)
}

// Everyone returns the sorted identifiers of physicians active over
// [from, to], excluding the placeholder.
func (r *Registry) Everyone(from, to time.Time) []string {
	var out []string
	for _, p := range r.all {
		if p.ActiveDuring(from, to) {
			out = append(out, p.ID)
		}
	}
	sort.Strings(out)
	return out
}

// ChargeDoctors returns the identifiers of physicians who can be charge.
func (r *Registry) ChargeDoctors() []string {
	var out []string
	for _, p := range r.all {
		if p.CanBeCharge {
			out = append(out, p.ID)
		}
	}
	sort.Strings(out)
	return out
}

// CardiacDoctors returns the identifiers of physicians who can be cardiac.
func (r *Registry) CardiacDoctors() []string {
	var out []string
	for _, p := range r.all {
		if p.CanBeCardiac {
			out = append(out, p.ID)
		}
	}
	sort.Strings(out)
	return out
}

// Get returns the physician with the given identifier, including the
// reserved placeholder.
func (r *Registry) Get(id string) (Physician, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// Placeholder returns the reserved "X" physician.
func (r *Registry) Placeholder() Physician {
	p, _ := r.Get(Placeholder)
	return p
}

// NotFoundError reports that Resolve could not identify a physician.
type NotFoundError struct {
	Text string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find physician with name or ID %q", e.Text)
}

// Resolve returns the identifier when text is an identifier, a display
// name, or a known alias (case-insensitively). It returns a *NotFoundError
// otherwise.
func (r *Registry) Resolve(text string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(text))
	if id, ok := r.aliasIndex[key]; ok {
		return id, nil
	}
	return "", &NotFoundError{Text: text}
}
