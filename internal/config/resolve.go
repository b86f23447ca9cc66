package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/bullion/bullion-cli/internal/validation"
)

// DefaultBaseURL is used when no override is configured anywhere.
const DefaultBaseURL = "https://api-test.bullionecosystem.com"

const (
	envBaseURL       = "BULLION_BASE_URL"
	envBaseURLLegacy = "BASE_URL"
	envEnvFile       = "BULLION_ENV_FILE"

	defaultEnvFile = ".env"
)

// ClientConfig contains resolved API client settings.
type ClientConfig struct {
	BaseURL string
	Source  string
}

// ResolveClientConfig resolves the API base URL. Precedence: explicit
// override, BULLION_BASE_URL, BASE_URL, BASE_URL from the .env file
// (BULLION_ENV_FILE or ./.env), then DefaultBaseURL.
func ResolveClientConfig(baseURLOverride string) (ClientConfig, error) {
	baseURL, source, err := lookupBaseURL(baseURLOverride)
	if err != nil {
		return ClientConfig{}, err
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if err := validation.ValidateBaseURL(baseURL); err != nil {
		return ClientConfig{}, fmt.Errorf("invalid base URL from %s: %w", source, err)
	}
	return ClientConfig{BaseURL: baseURL, Source: source}, nil
}

func lookupBaseURL(override string) (string, string, error) {
	if v := strings.TrimSpace(override); v != "" {
		return v, "--base-url", nil
	}
	if v := firstNonBlankEnv(envBaseURL); v != "" {
		return v, envBaseURL, nil
	}
	if v := firstNonBlankEnv(envBaseURLLegacy); v != "" {
		return v, envBaseURLLegacy, nil
	}

	path := firstNonBlankEnv(envEnvFile)
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		// A missing default .env is normal; an explicitly named one is not.
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return DefaultBaseURL, "default", nil
		}
		return "", "", fmt.Errorf("failed to read env file %q: %w", path, err)
	}
	if v := strings.TrimSpace(vars[envBaseURLLegacy]); v != "" {
		return v, path, nil
	}
	if v := strings.TrimSpace(vars[envBaseURL]); v != "" {
		return v, path, nil
	}
	return DefaultBaseURL, "default", nil
}

// LoadEnvFile reads key/value pairs from a .env file.
func LoadEnvFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("--env-file requires a file path")
	}

	envVars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read --env-file %q: %w", path, err)
	}

	return envVars, nil
}

// ApplyRuntimeVars copies base URL and keyring settings from a .env file into
// the process environment when they are not already exported.
func ApplyRuntimeVars(envVars map[string]string) {
	keys := []string{
		envBaseURL,
		envKeyringBackend,
		envKeyringPassword,
		envCredentialsDir,
	}

	for _, key := range keys {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		value := strings.TrimSpace(envVars[key])
		if value == "" {
			continue
		}
		_ = os.Setenv(key, value)
	}
}
