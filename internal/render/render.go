// Package render is the template engine of the site: it maps merged
// configuration onto the page markup. Scalar slots come from a fixed
// binding table of configuration paths, list-shaped sections (schedule,
// gallery, RSVP fields, contact methods) are rebuilt per render with
// per-field placeholder substitution, and an explicit "coming soon"
// block replaces any empty list so no region ever renders blank.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/soireehq/soiree/internal/config"
	"github.com/soireehq/soiree/internal/invite"
	"github.com/soireehq/soiree/internal/logging"
	"github.com/soireehq/soiree/internal/router"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// textBindings is the fixed table mapping template text slots to
// configuration paths. Every slot resolves through Document.Get, so a
// missing leaf yields its contextual placeholder, never a blank.
var textBindings = map[string]string{
	"hero.title":          "event.title",
	"hero.tagline":        "event.tagline",
	"hero.date":           "event.date",
	"hero.time":           "event.time",
	"hero.location":       "event.location",
	"details.address":     "event.address",
	"details.about":       "event.description",
	"organizer.name":      "organizer.name",
	"organizer.email":     "organizer.email",
	"organizer.phone":     "organizer.phone",
	"rsvp.deadline":       "rsvp.deadline",
	"customization.theme": "customization.theme",
}

// NavItem is one navigation entry.
type NavItem struct {
	Section string
	Label   string
	Href    string
	Active  bool
}

// SectionState carries visibility for one region. Exactly one section is
// active; the rest render with hidden and aria-hidden set.
type SectionState struct {
	Name   string
	Target string
	Active bool
}

// FieldView is one RSVP form field ready for the template, carrying any
// echoed value and inline validation error.
type FieldView struct {
	Name     string
	Label    string
	Type     string
	Required bool
	Options  []string
	Value    string
	Error    string
}

// ContactView is one contact method with its link semantics resolved
// (mailto:, tel:, or plain URL).
type ContactView struct {
	Type  string
	Label string
	Value string
	Icon  string
	Href  string
}

// Page is everything a single render needs.
type Page struct {
	Title      string
	Theme      string
	Active     string
	Hint       string // dismissible configuration hint
	Banner     string // transient submission error banner
	Confirmed  string // post-submit confirmation message
	LiveReload bool

	Nav      []NavItem
	Sections []SectionState

	ShowSchedule bool
	Schedule     []invite.ScheduleItem
	Gallery      []invite.GalleryImage
	RSVPOpen     bool
	RSVPFields   []FieldView
	Contact      []ContactView

	ContactValues map[string]string
	ContactErrors map[string]string

	text         map[string]string
	placeholders invite.Placeholders
}

// Text resolves a bound text slot. Unknown slots return the generic
// placeholder rather than an empty string.
func (p *Page) Text(slot string) string {
	if v, ok := p.text[slot]; ok {
		return v
	}
	return p.placeholders.For(slot)
}

// Option adjusts a page before rendering.
type Option func(*Page)

// WithHint sets the dismissible configuration hint.
func WithHint(hint string) Option {
	return func(p *Page) { p.Hint = hint }
}

// WithBanner sets the transient submission error banner.
func WithBanner(msg string) Option {
	return func(p *Page) { p.Banner = msg }
}

// WithConfirmation sets the post-submit confirmation message.
func WithConfirmation(msg string) Option {
	return func(p *Page) { p.Confirmed = msg }
}

// WithFormState echoes submitted values and inline errors into the RSVP
// fields so a blocked submission never clears the guest's entries.
func WithFormState(values, errors map[string]string) Option {
	return func(p *Page) {
		for i := range p.RSVPFields {
			name := p.RSVPFields[i].Name
			p.RSVPFields[i].Value = values[name]
			p.RSVPFields[i].Error = errors[name]
		}
	}
}

// WithContactFormState echoes submitted contact values and inline errors.
func WithContactFormState(values, errors map[string]string) Option {
	return func(p *Page) {
		if values != nil {
			p.ContactValues = values
		}
		if errors != nil {
			p.ContactErrors = errors
		}
	}
}

// WithLiveReload enables the development reload script.
func WithLiveReload() Option {
	return func(p *Page) { p.LiveReload = true }
}

// Engine renders pages from merged configuration.
type Engine struct {
	tmpl     *template.Template
	features config.FeaturesConfig
	logger   logging.Logger
	titler   cases.Caser
}

// New parses the embedded template set.
func New(features config.FeaturesConfig, logger logging.Logger) (*Engine, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	tmpl, err := template.New("page").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing embedded templates: %w", err)
	}

	return &Engine{
		tmpl:     tmpl,
		features: features,
		logger:   logger.WithComponent("render"),
		titler:   cases.Title(language.English),
	}, nil
}

// Page assembles the view model for one render. active must be a valid
// section; callers resolve that through the router first.
func (e *Engine) Page(doc *invite.Document, active string, opts ...Option) (*Page, error) {
	inv, err := doc.Decode()
	if err != nil {
		return nil, fmt.Errorf("decoding document for render: %w", err)
	}

	// A disabled section is treated like an unknown one: the page falls
	// back to home so exactly one region stays visible.
	if !e.SectionEnabled(active, inv.Customization) {
		active = router.SectionHome
	}

	page := &Page{
		Title:         doc.Get("event.title"),
		Theme:         doc.Get("customization.theme"),
		Active:        active,
		text:          make(map[string]string, len(textBindings)),
		placeholders:  doc.Placeholders(),
		ContactValues: map[string]string{},
		ContactErrors: map[string]string{},
	}

	for slot, path := range textBindings {
		page.text[slot] = doc.Get(path)
	}

	for _, section := range router.Sections {
		if !e.SectionEnabled(section, inv.Customization) {
			// Disabled sections drop out of both navigation and markup.
			continue
		}
		page.Nav = append(page.Nav, NavItem{
			Section: section,
			Label:   e.titler.String(section),
			Href:    "/section/" + section,
			Active:  section == active,
		})
		page.Sections = append(page.Sections, SectionState{
			Name:   section,
			Target: "section-" + section,
			Active: section == active,
		})
	}

	page.ShowSchedule = e.features.Schedule
	page.Schedule = fillSchedule(inv.Schedule, page.placeholders)
	page.Gallery = fillGallery(inv.Gallery.Images, page.placeholders)
	page.RSVPOpen = inv.RSVP.Enabled
	page.RSVPFields = fillRSVPFields(inv.RSVP.Fields, page.placeholders)
	page.Contact = fillContact(inv.Contact.Methods, page.placeholders)

	for _, opt := range opts {
		opt(page)
	}
	return page, nil
}

// Render writes the page markup.
func (e *Engine) Render(w io.Writer, page *Page) error {
	if err := e.tmpl.ExecuteTemplate(w, "page.tmpl", page); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}

// SectionEnabled combines the developer feature flag with the user's
// navigation visibility flag. Home is always present.
func (e *Engine) SectionEnabled(section string, custom invite.Customization) bool {
	if section == router.SectionHome {
		return true
	}
	if !custom.SectionVisible(section) {
		return false
	}
	switch section {
	case router.SectionDetails:
		// Details always carries the event facts; only the schedule list
		// inside it is flag-gated.
		return true
	case router.SectionGallery:
		return e.features.Gallery
	case router.SectionRSVP:
		return e.features.RSVP
	case router.SectionContact:
		return e.features.Contact
	default:
		return true
	}
}

// fillSchedule substitutes per-field placeholders into schedule rows.
func fillSchedule(items []invite.ScheduleItem, p invite.Placeholders) []invite.ScheduleItem {
	out := make([]invite.ScheduleItem, len(items))
	for i, item := range items {
		if item.Time == "" {
			item.Time = p.For("schedule.time")
		}
		if item.Title == "" {
			item.Title = p.For("schedule.title")
		}
		if item.Description == "" {
			item.Description = p.For("schedule.description")
		}
		out[i] = item
	}
	return out
}

// fillGallery substitutes per-field placeholders into gallery entries.
func fillGallery(images []invite.GalleryImage, p invite.Placeholders) []invite.GalleryImage {
	out := make([]invite.GalleryImage, len(images))
	for i, img := range images {
		if img.Src == "" {
			img.Src = p.For("gallery.images.src")
		}
		// An author caption is usable alt text; otherwise the empty-alt
		// convention marks the image decorative for screen readers.
		if img.Alt == "" {
			img.Alt = img.Caption
		}
		if img.Caption == "" {
			img.Caption = p.For("gallery.images.caption")
		}
		out[i] = img
	}
	return out
}

// fillRSVPFields converts field definitions into their view shape.
func fillRSVPFields(fields []invite.RSVPField, p invite.Placeholders) []FieldView {
	out := make([]FieldView, len(fields))
	for i, f := range fields {
		view := FieldView{
			Name:     f.Name,
			Label:    f.Label,
			Type:     f.Type,
			Required: f.Required,
			Options:  f.Options,
		}
		if view.Label == "" {
			view.Label = p.For("rsvp.fields.label")
		}
		if view.Type == "" {
			view.Type = "text"
		}
		out[i] = view
	}
	return out
}

// fillContact resolves link semantics per method type.
func fillContact(methods []invite.ContactMethod, p invite.Placeholders) []ContactView {
	out := make([]ContactView, len(methods))
	for i, m := range methods {
		view := ContactView{
			Type:  m.Type,
			Label: m.Label,
			Value: m.Value,
			Icon:  m.Icon,
		}
		if view.Value == "" {
			view.Value = p.For("contact.methods." + m.Type)
		}
		if view.Label == "" {
			view.Label = p.For("contact.methods.label")
		}
		if view.Icon == "" {
			view.Icon = p.For("contact.methods.icon")
		}
		view.Href = hrefFor(m.Type, view.Value)
		out[i] = view
	}
	return out
}

// hrefFor maps a contact method type to its anchor semantics.
func hrefFor(methodType, value string) string {
	switch strings.ToLower(methodType) {
	case "email":
		return "mailto:" + value
	case "phone", "tel":
		return "tel:" + strings.ReplaceAll(value, " ", "")
	default:
		return value
	}
}
