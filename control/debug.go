package control

// Debug output hook. Platform code redirects this to UART or USB; the
// default is a no-op and debug stays disabled so printing can never
// perturb tick timing unless explicitly requested.

// DebugWriter is a function type for writing debug messages.
type DebugWriter func(string)

var (
	debugPrintln DebugWriter = func(string) {}
	debugEnabled bool
)

// SetDebugWriter sets the platform-specific debug output function.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output.
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// Debug emits a message through the registered writer when enabled.
func Debug(msg string) {
	if debugEnabled {
		debugPrintln(msg)
	}
}
