package jndi

// Environment is the property table an initial context is created from, mirroring
// the hash table the original samples fill before looking anything up. Values are
// loosely typed; the typed getters apply defaults for absent or mistyped entries.
type Environment map[string]interface{}

// NewEnvironment returns an empty property table.
func NewEnvironment() Environment {
	return Environment{}
}

// Set stores a property, returning the environment for chaining.
func (env Environment) Set(key string, value interface{}) Environment {
	env[key] = value
	return env
}

// GetString fetches a string property, or fallback when absent.
func (env Environment) GetString(key string, fallback string) string {
	if value, ok := env[key].(string); ok {
		return value
	}
	return fallback
}

// GetBool fetches a bool property, or fallback when absent.
func (env Environment) GetBool(key string, fallback bool) bool {
	if value, ok := env[key].(bool); ok {
		return value
	}
	return fallback
}

// GetInt fetches an int property, or fallback when absent.
func (env Environment) GetInt(key string, fallback int) int {
	if value, ok := env[key].(int); ok {
		return value
	}
	return fallback
}
