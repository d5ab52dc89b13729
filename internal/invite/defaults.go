package invite

// Defaults returns the built-in event document. It is the base layer of
// every merge: a user document overrides it field by field, and a missing
// or unparsable user document leaves it in effect unchanged.
//
// A fresh map is returned on every call so callers can never mutate the
// baseline for later loads.
func Defaults() map[string]any {
	return map[string]any{
		"event": map[string]any{
			"title":       "You're Invited",
			"tagline":     "Join us for a special celebration",
			"date":        "Date to be announced",
			"time":        "Time to be announced",
			"location":    "Location to be announced",
			"address":     "",
			"description": "We are putting the final touches on the details. Check back soon!",
		},
		"organizer": map[string]any{
			"name":  "The Hosts",
			"email": "hello@example.com",
			"phone": "+1 (555) 000-0000",
		},
		"schedule": []any{},
		"gallery": map[string]any{
			"images": []any{},
		},
		"rsvp": map[string]any{
			"enabled":   true,
			"deadline":  "",
			"maxGuests": 2,
			"fields": []any{
				map[string]any{
					"name":     "name",
					"label":    "Your Name",
					"type":     "text",
					"required": true,
				},
				map[string]any{
					"name":     "email",
					"label":    "Email Address",
					"type":     "email",
					"required": true,
				},
				map[string]any{
					"name":     "attending",
					"label":    "Will you attend?",
					"type":     "select",
					"required": true,
					"options":  []any{"Joyfully accepts", "Regretfully declines"},
				},
				map[string]any{
					"name":     "guests",
					"label":    "Number of guests",
					"type":     "number",
					"required": false,
				},
				map[string]any{
					"name":     "message",
					"label":    "Message for the hosts",
					"type":     "textarea",
					"required": false,
				},
			},
		},
		"contact": map[string]any{
			"methods": []any{
				map[string]any{
					"type":  "email",
					"label": "Email us",
					"value": "hello@example.com",
					"icon":  "mail",
				},
			},
		},
		"customization": map[string]any{
			"theme": "classic",
			"navigation": map[string]any{
				"home":    true,
				"details": true,
				"gallery": true,
				"rsvp":    true,
				"contact": true,
			},
		},
	}
}
