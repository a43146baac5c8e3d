package wcx

// Config holds the settings a Builder recognizes.
type Config struct {
	// APIEndpoint is the base URL of a component store. It enables cloud
	// export and import by name. Empty disables both.
	APIEndpoint string `json:"apiEndpoint,omitempty" yaml:"api_endpoint"`

	// LocalRegistry is carried for compatibility; it does not gate any
	// behavior. Defaults to true.
	LocalRegistry bool `json:"localRegistry" yaml:"local_registry"`

	// APIToken is sent as a bearer token to APIEndpoint.
	APIToken string `json:"-" yaml:"api_token"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{LocalRegistry: true}
}
