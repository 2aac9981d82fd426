package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Severity Severity
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Update and wiring (E101-E109)
	// ============================================

	"E101": {
		Category: CategoryUpdate,
		Message:  "Invalid update result",
		Detail:   "The update function returned nil. Return the next state (usually the current state merged with a partial). The previous state was kept and nothing re-rendered.",
		DocURL:   "https://sparkle.dev/docs/errors/E101",
	},
	"E102": {
		Category: CategoryWire,
		Message:  "Invalid wire result",
		Detail:   "A wired handler returned something other than nil, a partial state or a slice of partial states. No state change was made.",
		DocURL:   "https://sparkle.dev/docs/errors/E102",
	},
	"E103": {
		Category: CategoryDecoration,
		Severity: SeverityWarning,
		Message:  "Key collision",
		Detail:   "A bead overwrote a key that an earlier bead (or the seed) already set to a different value. The later bead wins.",
		DocURL:   "https://sparkle.dev/docs/errors/E103",
	},
	"E104": {
		Category: CategoryDecoration,
		Message:  "Interface not satisfied",
		Detail:   "A validating bead rejected the decorated state. The decoration pass was aborted and the last good state is still current.",
		DocURL:   "https://sparkle.dev/docs/errors/E104",
	},
	"E105": {
		Category: CategoryDecoration,
		Message:  "Redecoration too deep",
		Detail:   "A bead kept calling redecorate recursively. Guard the call so that it does not run on every pass.",
		DocURL:   "https://sparkle.dev/docs/errors/E105",
	},
	"E106": {
		Category: CategoryReactivity,
		Message:  "Effect chain too deep",
		Detail:   "Effects kept writing signals that re-ran effects. This usually means an effect writes a signal it also reads.",
		DocURL:   "https://sparkle.dev/docs/errors/E106",
	},
	"E107": {
		Category: CategoryDecoration,
		Message:  "Undeclared output key",
		Detail:   "A bead declared its output keys and returned a key outside that list.",
		DocURL:   "https://sparkle.dev/docs/errors/E107",
	},
	"E108": {
		Category: CategoryDecoration,
		Message:  "Action not found",
		Detail:   "The state has no action under that name. Check that the bead providing it is in the pipeline.",
		DocURL:   "https://sparkle.dev/docs/errors/E108",
	},
	"E109": {
		Category: CategoryUpdate,
		Message:  "App already started",
		Detail:   "Start runs the initial render and setup exactly once per app.",
		DocURL:   "https://sparkle.dev/docs/errors/E109",
	},

	// ============================================
	// Persistence (E201-E209)
	// ============================================

	"E201": {
		Category: CategoryPersistence,
		Message:  "Persisted state unreadable",
		Detail:   "The stored value could not be decoded as a state mapping. It was ignored and the seed values were kept.",
		DocURL:   "https://sparkle.dev/docs/errors/E201",
	},
	"E202": {
		Category: CategoryPersistence,
		Message:  "Store closed",
		Detail:   "The persistence store was used after Close.",
		DocURL:   "https://sparkle.dev/docs/errors/E202",
	},

	// ============================================
	// Config (E301-E309)
	// ============================================

	"E301": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file failed validation.",
		DocURL:   "https://sparkle.dev/docs/errors/E301",
	},
	"E302": {
		Category: CategoryConfig,
		Message:  "Configuration file unreadable",
		Detail:   "The configuration file exists but could not be parsed.",
		DocURL:   "https://sparkle.dev/docs/errors/E302",
	},

	// ============================================
	// CLI (E401-E409)
	// ============================================

	"E401": {
		Category: CategoryCLI,
		Message:  "Unknown app",
		Detail:   "The requested demo app does not exist.",
		DocURL:   "https://sparkle.dev/docs/errors/E401",
	},
}

// Codes returns all registered codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
