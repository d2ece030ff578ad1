package ir

// Version constants for the fixture IR and engine.
const (
	// IRVersion is the fixture IR schema version.
	IRVersion = "1"

	// EngineVersion is the resolution engine version.
	EngineVersion = "0.1.0"
)
