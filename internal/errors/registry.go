package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Discovery Errors (E100-E109)
	// ============================================

	"E100": {
		Category:   CategoryDiscovery,
		Message:    "Route discovery failed",
		Suggestion: "Check that the sites directory exists and is readable",
		DocURL:     "https://cubic.dev/docs/errors/E100",
	},

	// ============================================
	// Prefetch Errors (E110-E119)
	// ============================================

	"E110": {
		Category: CategoryPrefetch,
		Message:  "Route resolution failed",
		DocURL:   "https://cubic.dev/docs/errors/E110",
	},
	"E111": {
		Category: CategoryPrefetch,
		Message:  "Route not found",
		DocURL:   "https://cubic.dev/docs/errors/E111",
	},
	"E112": {
		Category: CategoryPrefetch,
		Message:  "Data hook failed",
		DocURL:   "https://cubic.dev/docs/errors/E112",
	},
	"E113": {
		Category:   CategoryPrefetch,
		Message:    "Prefetch timed out",
		Suggestion: "Make data hooks honor context cancellation or raise prefetch.timeout",
		DocURL:     "https://cubic.dev/docs/errors/E113",
	},

	// ============================================
	// Config Errors (E120-E129)
	// ============================================

	"E120": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration file",
		Suggestion: "Check that cubic.json is valid JSON",
		DocURL:     "https://cubic.dev/docs/errors/E120",
	},
	"E121": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create cubic.json in the project root",
		DocURL:     "https://cubic.dev/docs/errors/E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		DocURL:   "https://cubic.dev/docs/errors/E122",
	},

	// ============================================
	// Manifest Errors (E130-E139)
	// ============================================

	"E130": {
		Category:   CategoryManifest,
		Message:    "Endpoint manifest unreadable",
		Suggestion: "Endpoint manifests are a JSON or YAML list of {route, view, file}",
		DocURL:     "https://cubic.dev/docs/errors/E130",
	},
	"E131": {
		Category: CategoryManifest,
		Message:  "Endpoint manifest write failed",
		DocURL:   "https://cubic.dev/docs/errors/E131",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
