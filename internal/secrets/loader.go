package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a connection secret such as a database URL lives.
type Source struct {
	// Name is used in error messages.
	Name string
	// Value is an inline value from configuration.
	Value string
	// File holds the value, as mounted by docker or kubernetes secrets.
	File string
	// Env names an environment variable holding the value.
	Env string
}

// Load resolves a secret. File wins over Value, and Value wins over Env.
// The result is trimmed and never empty.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
			return secret, nil
		}
		return "", fmt.Errorf("%s is not configured (%s is empty)", name, env)
	}

	return "", fmt.Errorf("%s is not configured", name)
}
