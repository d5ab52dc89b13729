// Package invite manages the user-editable event configuration document.
//
// The document is loaded once per engine life, deep-merged over the
// built-in defaults, and immutable afterwards. Missing leaf values never
// surface as empty strings: dotted-path lookups fall back to contextual
// placeholder text so the rendered page never shows blanks.
package invite

// Invitation is the typed shape of the merged event document.
type Invitation struct {
	Event         Event         `yaml:"event"`
	Organizer     Organizer     `yaml:"organizer"`
	Schedule      []ScheduleItem `yaml:"schedule"`
	Gallery       Gallery       `yaml:"gallery"`
	RSVP          RSVP          `yaml:"rsvp"`
	Contact       Contact       `yaml:"contact"`
	Customization Customization `yaml:"customization"`
}

// Event holds the hero-section facts about the occasion.
type Event struct {
	Title       string `yaml:"title"`
	Tagline     string `yaml:"tagline"`
	Date        string `yaml:"date"`
	Time        string `yaml:"time"`
	Location    string `yaml:"location"`
	Address     string `yaml:"address"`
	Description string `yaml:"description"`
}

// Organizer identifies who is hosting.
type Organizer struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Phone string `yaml:"phone"`
}

// ScheduleItem is one row of the event timeline.
type ScheduleItem struct {
	Time        string `yaml:"time"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Gallery holds the photo gallery images.
type Gallery struct {
	Images []GalleryImage `yaml:"images"`
}

// GalleryImage is one gallery entry.
type GalleryImage struct {
	Src     string `yaml:"src"`
	Alt     string `yaml:"alt"`
	Caption string `yaml:"caption"`
}

// RSVP configures the RSVP form.
type RSVP struct {
	Enabled   bool        `yaml:"enabled"`
	Deadline  string      `yaml:"deadline"`
	MaxGuests int         `yaml:"maxGuests"`
	Fields    []RSVPField `yaml:"fields"`
}

// RSVPField defines one form field.
type RSVPField struct {
	Name     string   `yaml:"name"`
	Label    string   `yaml:"label"`
	Type     string   `yaml:"type"`
	Required bool     `yaml:"required"`
	Options  []string `yaml:"options"`
}

// Contact holds the ways to reach the organizer.
type Contact struct {
	Methods []ContactMethod `yaml:"methods"`
}

// ContactMethod is one contact channel (email, phone, ...).
type ContactMethod struct {
	Type  string `yaml:"type"`
	Label string `yaml:"label"`
	Value string `yaml:"value"`
	Icon  string `yaml:"icon"`
}

// Customization carries theme and per-section navigation visibility.
type Customization struct {
	Theme      string          `yaml:"theme"`
	Navigation map[string]bool `yaml:"navigation"`
}

// SectionVisible reports whether a navigation section is enabled. Absent
// entries default to visible: hiding a section is an explicit opt-out.
func (c Customization) SectionVisible(section string) bool {
	if c.Navigation == nil {
		return true
	}
	visible, ok := c.Navigation[section]
	if !ok {
		return true
	}
	return visible
}
