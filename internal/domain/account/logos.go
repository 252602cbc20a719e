package account

import "sort"

// DefaultLogo is used when a registration names an unknown logo.
const DefaultLogo = "default"

const userIcon = `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="M19 21v-2a4 4 0 0 0-4-4H9a4 4 0 0 0-4 4v2"/><circle cx="12" cy="7" r="4"/></svg>`

var logos = map[string]string{ //nolint:gochecknoglobals // static asset table
	"rocket":   `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="M5.5 16.5-1.5 22M18 6l-5.5 5.5M13 2 2 13l3.5 3.5L18 4l-2-2Z"/><path d="m2 22 5.5-1.5M16.5 5.5 22 1.5M9 15l-1.5 1.5a2.828 2.828 0 1 0 4 4l1.5-1.5"/></svg>`,
	"code":     `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><polyline points="16 18 22 12 16 6"/><polyline points="8 6 2 12 8 18"/></svg>`,
	"brain":    `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="M12 2a4.5 4.5 0 0 0-4.5 4.5c0 1.05.38 2.05.97 2.85L7 11.5v2.85c0 .3.15.58.4.75L12 18.5l4.6-3.4c.25-.17.4-.45.4-.75V11.5L15.53 9.35A4.5 4.5 0 0 0 12 2Z"/><path d="M12 2v4.5"/><path d="m16.5 6.5-3 3"/><path d="m7.5 6.5 3 3"/><path d="M12 18.5v3.5"/><path d="m7.5 14.5-5 2.5"/><path d="m16.5 14.5 5 2.5"/></svg>`,
	"planet":   `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="M12 2a10 10 0 1 0 10 10c0-4.42-2.86-8.17-6.84-9.51"/><path d="M17.55 16.5A6.5 6.5 0 0 1 8 12.5a6.51 6.51 0 0 1 1.45-4"/></svg>`,
	"abstract": `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="M10.42 12.61a2.1 2.1 0 1 1 2.97 2.97L7.95 21 2 22l1-5.95Z"/><path d="m16.5 5.5 2.97-2.97a2.1 2.1 0 0 1 2.97 0h0a2.1 2.1 0 0 1 0 2.97L19.53 8.47"/><path d="M15 3h6v6"/><path d="M2.12 15.88a2.1 2.1 0 0 1 0-2.97L5.05 10a2.1 2.1 0 0 1 2.97 0L12 13.92"/></svg>`,
	"user":     userIcon,
	"default":  userIcon,
}

// Logos returns a copy of the available profile logos keyed by name.
func Logos() map[string]string {
	out := make(map[string]string, len(logos))
	for k, v := range logos {
		out[k] = v
	}
	return out
}

// LogoNames returns the logo names in alphabetical order.
func LogoNames() []string {
	names := make([]string, 0, len(logos))
	for k := range logos {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ValidLogo reports whether name is a known logo.
func ValidLogo(name string) bool {
	_, ok := logos[name]
	return ok
}
