package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (bad settings file, bad log level)
	ExitDataError   = 3 // Data error (unreadable input, malformed JSON, validation failure, nothing to display, unknown node)
)
