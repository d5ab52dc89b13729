// Package internal contains the core implementation packages for the
// soiree site engine.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - bus: synchronous/asynchronous event bus with panic isolation
//   - config: developer feature flags loaded through viper (.soiree.yml)
//   - email: provider-abstracted submission delivery (formspree, netlify, emailjs)
//   - errors: structured site errors with type, code, and context
//   - forms: RSVP and contact form validation
//   - http: HTTP server lifecycle and route registration
//   - invite: the user event document (defaults, merge, placeholders, loading)
//   - logging: structured logging on log/slog
//   - middleware: HTTP middleware chain (logging, recovery, CORS, headers)
//   - render: template engine mapping merged configuration to markup
//   - router: section navigation state machine with history and hooks
//   - server: composition of all of the above plus the live-reload hub
//   - storage: afero-backed submission backups with TTL expiry
//   - version: build metadata
//   - watch: debounced configuration file watching
//
// # Inter-Package Communication
//
// Components publish and subscribe on the bus package's event bus
// (navigation lifecycle, configuration changes, form outcomes) rather
// than calling each other directly, keeping the dependency graph flat.
package internal
