package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/soireehq/soiree/internal/email"
	siteerrors "github.com/soireehq/soiree/internal/errors"
	"github.com/soireehq/soiree/internal/forms"
	"github.com/soireehq/soiree/internal/invite"
	"github.com/soireehq/soiree/internal/render"
	"github.com/soireehq/soiree/internal/router"
	"github.com/soireehq/soiree/internal/version"
)

//go:embed static
var staticFS embed.FS

// StaticFS exposes the embedded assets for the static exporter.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Published after a submission is accepted or rejected by the provider.
const (
	EventFormSubmitted = "form.submitted"
	EventFormError     = "form.error"
)

const (
	rsvpConfirmation    = "Thank you! Your RSVP has been received."
	contactConfirmation = "Thanks for reaching out! We'll get back to you soon."
	deliveryFailure     = "We couldn't send your message just now. Your entries are kept below; please try again."
)

// HandleIndex serves the home section.
func (s *Server) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.sections.Navigate(r.Context(), router.SectionHome, true)
	s.renderSection(w, r, router.SectionHome, http.StatusOK)
}

// HandleSection serves /section/{name}. Unknown or disabled sections
// leave the current section in place and redirect there.
func (s *Server) HandleSection(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/section/")
	name = strings.Trim(name, "/")

	if !s.sectionAvailable(r.Context(), name) || !s.sections.Navigate(r.Context(), name, true) {
		http.Redirect(w, r, "/section/"+s.sections.Current(), http.StatusSeeOther)
		return
	}
	s.renderSection(w, r, name, http.StatusOK)
}

// sectionAvailable reports whether a section exists and is currently
// served, combining feature flags with the event document's navigation
// visibility.
func (s *Server) sectionAvailable(ctx context.Context, name string) bool {
	if !router.Valid(name) {
		return false
	}
	doc, _ := s.document(ctx)
	inv, err := doc.Decode()
	if err != nil {
		// The render path reports decode failures; don't mask them with
		// a redirect.
		return true
	}
	return s.engine.SectionEnabled(name, inv.Customization)
}

// HandleRSVPSubmit validates an RSVP, backs it up, and forwards it to
// the configured provider.
func (s *Server) HandleRSVPSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	values := formValues(r)

	doc, _ := s.document(ctx)
	inv, err := doc.Decode()
	if err != nil {
		s.logger.Error(ctx, err, "decoding event document")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if !s.config.Features.RSVP || !inv.RSVP.Enabled {
		s.renderSection(w, r, router.SectionRSVP, http.StatusForbidden,
			render.WithBanner("RSVPs are closed."))
		return
	}

	result := forms.ValidateRSVP(inv.RSVP, values)
	if !result.Valid() {
		s.renderSection(w, r, router.SectionRSVP, http.StatusUnprocessableEntity,
			render.WithFormState(result.Values, result.Errors))
		return
	}

	// Back up before delivery so a provider outage never loses the entry.
	key := "rsvp." + uuid.NewString()
	if err := s.store.SetWithTTL(key, result.Values, s.retention()); err != nil {
		s.logger.Warn(ctx, err, "backing up rsvp submission")
	}

	sub := email.Submission{Form: "rsvp", Fields: result.Values}
	if err := s.sender.Send(ctx, sub); err != nil {
		s.logger.Error(ctx, err, "delivering rsvp submission", "provider", s.sender.Name())
		s.events.Publish(ctx, EventFormError, sub)
		s.renderSection(w, r, router.SectionRSVP, http.StatusBadGateway,
			render.WithFormState(result.Values, nil),
			render.WithBanner(deliveryFailure))
		return
	}

	s.events.Publish(ctx, EventFormSubmitted, sub)
	s.renderSection(w, r, router.SectionRSVP, http.StatusOK,
		render.WithConfirmation(rsvpConfirmation))
}

// HandleContactSubmit validates and forwards a contact message.
func (s *Server) HandleContactSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	values := formValues(r)

	if !s.config.Features.Contact {
		s.renderSection(w, r, router.SectionHome, http.StatusForbidden,
			render.WithBanner("The contact form is not available."))
		return
	}

	result := forms.ValidateContact(values)
	if !result.Valid() {
		s.renderSection(w, r, router.SectionContact, http.StatusUnprocessableEntity,
			render.WithContactFormState(result.Values, result.Errors))
		return
	}

	key := "contact." + uuid.NewString()
	if err := s.store.SetWithTTL(key, result.Values, s.retention()); err != nil {
		s.logger.Warn(ctx, err, "backing up contact submission")
	}

	sub := email.Submission{Form: "contact", Fields: result.Values}
	if err := s.sender.Send(ctx, sub); err != nil {
		s.logger.Error(ctx, err, "delivering contact submission", "provider", s.sender.Name())
		s.events.Publish(ctx, EventFormError, sub)
		s.renderSection(w, r, router.SectionContact, http.StatusBadGateway,
			render.WithContactFormState(result.Values, nil),
			render.WithBanner(deliveryFailure))
		return
	}

	s.events.Publish(ctx, EventFormSubmitted, sub)
	s.renderSection(w, r, router.SectionContact, http.StatusOK,
		render.WithConfirmation(contactConfirmation))
}

// HandleHealth reports liveness and build metadata.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": version.Short(),
		"clients": s.hub.ClientCount(),
	})
}

// HandleStatic serves the embedded stylesheet and image assets.
func (s *Server) HandleStatic(w http.ResponseWriter, r *http.Request) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.StripPrefix("/static/", http.FileServer(http.FS(sub))).ServeHTTP(w, r)
}

// HandleWebSocket upgrades live-reload connections. Only available when
// hot reload is on.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.config.Development.HotReload {
		http.NotFound(w, r)
		return
	}
	s.hub.Accept(w, r)
}

// renderSection writes the page for one section. A failed document load
// falls back to the built-in defaults with an explanatory hint, so the
// site always renders.
func (s *Server) renderSection(w http.ResponseWriter, r *http.Request, section string, status int, opts ...render.Option) {
	ctx := r.Context()

	doc, hint := s.document(ctx)
	if hint != "" {
		opts = append([]render.Option{render.WithHint(hint)}, opts...)
	}
	if s.config.Development.HotReload {
		opts = append(opts, render.WithLiveReload())
	}

	page, err := s.engine.Page(doc, section, opts...)
	if err != nil {
		s.logger.Error(ctx, err, "assembling page", "section", section)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.engine.Render(w, page); err != nil {
		s.logger.Error(ctx, err, "rendering page", "section", section)
	}
}

// document loads the event document, falling back to the defaults with
// a hint describing why.
func (s *Server) document(ctx context.Context) (*invite.Document, string) {
	doc, err := s.loader.Load(ctx, s.config.EventFile)
	if err == nil {
		return doc, ""
	}

	hint := "Showing the sample invitation. Create " + s.config.EventFile + " to customize it."
	var siteErr *siteerrors.SiteError
	if errors.As(err, &siteErr) && siteErr.Code != "config_read" {
		hint = s.config.EventFile + " could not be parsed; showing the built-in defaults."
		s.logger.Warn(ctx, err, "event document unusable, using defaults")
	}
	return s.loader.Fallback(), hint
}

// formValues flattens the posted form to single values per field.
func formValues(r *http.Request) map[string]string {
	_ = r.ParseForm()
	values := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		values[key] = r.PostForm.Get(key)
	}
	return values
}
