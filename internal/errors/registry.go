package errors

// template defines a registered error type.
type template struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]template{
	// ============================================
	// Protocol errors (E100-E199)
	// ============================================

	"E101": {
		Category:   CategoryProtocol,
		Message:    "malformed wire frame",
		Suggestion: "The client sent bytes that do not decode as a frame. Check for client/server version skew.",
	},
	"E102": {
		Category:   CategoryProtocol,
		Message:    "malformed frame payload",
		Suggestion: "The frame envelope decoded but its payload did not match the frame type.",
	},
	"E103": {
		Category:   CategoryProtocol,
		Message:    "unknown frame type",
		Suggestion: "The client sent a frame type this server does not understand.",
	},

	// ============================================
	// Config errors (E200-E299)
	// ============================================

	"E201": {
		Category:   CategoryConfig,
		Message:    "invalid server configuration",
		Suggestion: "Check the server config fields named in the wrapped error.",
	},

	// ============================================
	// CLI errors (E300-E399)
	// ============================================

	"E301": {
		Category:   CategoryCLI,
		Message:    "invalid command arguments",
		Suggestion: "Run with --help for usage.",
	},
}
