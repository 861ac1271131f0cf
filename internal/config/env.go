package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	apperrors "github.com/ducminhle1904/agts/internal/errors"
)

// DefaultEnvFile is read when LoadEnvFile is called with an empty path.
const DefaultEnvFile = ".env"

type envReader struct {
	lookup LookupFunc
}

func (r envReader) get(key, defaultVal string) string {
	if val, ok := r.lookup(key); ok && val != "" {
		return val
	}
	return defaultVal
}

func (r envReader) optional(key string) *string {
	if val, ok := r.lookup(key); ok && val != "" {
		return &val
	}
	return nil
}

// GetEnv returns the variable's value, or defaultVal when unset or empty.
// Used by callers for settings that live outside the registry, such as
// data source credentials.
func GetEnv(key, defaultVal string) string {
	return envReader{lookup: os.LookupEnv}.get(key, defaultVal)
}

// LoadEnvFile populates the process environment from a .env style file.
// Variables already present in the environment are left untouched. A
// missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("⚠️  Environment file %s not found, using system environment", path)
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return apperrors.WrapError(err, apperrors.ErrorCategoryConfiguration, "config", "load env file").
			WithContext("path", path)
	}

	log.Printf("✅ Environment loaded from %s", path)
	return nil
}

// ReadEnvFile parses a .env style file without touching the process
// environment. The result can back LoadFromLookup.
func ReadEnvFile(path string) (LookupFunc, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	return func(key string) (string, bool) {
		val, ok := values[key]
		return val, ok
	}, nil
}
