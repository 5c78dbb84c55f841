package constants

// Boolean string values
const (
	BoolTrue  = "true"
	BoolFalse = "false"
	BoolYes   = "yes"
	BoolNo    = "no"
	BoolOne   = "1"
	BoolZero  = "0"
)

// Magic numbers for various operations
const (
	// Semantic search returns the top three notes unless configured otherwise
	DefaultSearchLimit = 3

	// Embedding defaults
	DefaultVectorDimensions        = 768
	DefaultEmbeddingTimeoutSeconds = 30
	DefaultEmbeddingCacheSize      = 256

	// Language model defaults
	QueryMaxTokens      = 700
	QueryTemperature    = 0.79
	QueryTimeoutSeconds = 120

	// Resource preview length
	SearchPreviewLength = 150

	// HTTP server
	DefaultServePort       = 8080
	ShutdownTimeoutSeconds = 5
)

// Timestamp layout used in command output
const DisplayTimeLayout = "2006-01-02 15:04:05"

// File permissions
const (
	ConfigFileMode = 0600 // Secure file permissions for config
	DataDirMode    = 0755
)
