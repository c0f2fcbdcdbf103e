package entities

import (
	"sort"
	"strings"
	"time"
)

// Profile is one tracked customer or project. Beyond the fixed fields,
// arbitrary attributes ride along in Attrs.
type Profile struct {
	Name        string            `json:"name"`
	Health      string            `json:"health,omitempty"`
	LastContact string            `json:"last_contact,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	Attrs       map[string]string `json:"attrs,omitempty"`
}

// Document maps customer and project identifiers to profiles.
type Document struct {
	Customers map[string]Profile `json:"customers"`
	Projects  map[string]Profile `json:"projects"`
}

// NewDocument returns an empty entity document.
func NewDocument() *Document {
	return &Document{
		Customers: map[string]Profile{},
		Projects:  map[string]Profile{},
	}
}

// Store is the persistence interface for the entity document.
type Store interface {
	Open() error
	Load() (*Document, error)
	Save(doc *Document) error
	Update(fn func(*Document) error) error
	Close() error
	Info() (map[string]string, error)
}

// UpdateCustomer applies attrs to a customer profile, creating it lazily on
// first touch and refreshing last_contact. Recognized keys map onto profile
// fields; anything else lands in Attrs. Profiles are never deleted here.
func UpdateCustomer(st Store, customerID string, attrs map[string]string, now time.Time) error {
	return st.Update(func(doc *Document) error {
		profile, ok := doc.Customers[customerID]
		if !ok {
			profile = Profile{Name: customerID}
		}

		for key, value := range attrs {
			switch key {
			case "name":
				profile.Name = value
			case "health":
				profile.Health = value
			case "notes":
				profile.Notes = value
			default:
				if profile.Attrs == nil {
					profile.Attrs = map[string]string{}
				}
				profile.Attrs[key] = value
			}
		}
		profile.LastContact = now.Format("2006-01-02")

		doc.Customers[customerID] = profile
		return nil
	})
}

// FindCustomer returns the first customer profile whose name contains the
// fragment, case-insensitively. Keys are walked in sorted order so "first"
// is stable.
func (d *Document) FindCustomer(fragment string) (Profile, bool) {
	needle := strings.ToLower(fragment)
	for _, id := range sortedKeys(d.Customers) {
		profile := d.Customers[id]
		if strings.Contains(strings.ToLower(profile.Name), needle) {
			return profile, true
		}
	}
	return Profile{}, false
}

// CustomerNames returns the tracked customer identifiers, used by the signal
// extractor as its mention watch list.
func (d *Document) CustomerNames() []string {
	return sortedKeys(d.Customers)
}

func sortedKeys(m map[string]Profile) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
