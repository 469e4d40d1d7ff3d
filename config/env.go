package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded by LoadEnv when no files are named.
const DefaultEnvFile = ".env"

// LoadEnv loads .env files into the process environment without
// overriding variables that are already set. With no arguments it loads
// DefaultEnvFile if present.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	return godotenv.Load(files...)
}
