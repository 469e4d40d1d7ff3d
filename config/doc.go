// Package config loads watchtower settings.
//
// Settings come from, lowest precedence first: built-in defaults, the
// selected template ("default" or "minimal"), a YAML file, and
// WATCHTOWER_* environment variables (dots become underscores, so
// runner.budget is WATCHTOWER_RUNNER_BUDGET). LoadEnv reads .env files into
// the process environment first.
//
// Secret values (auth token, JWT secret, Redis password) are resolved after
// loading: ${VAR} references must exist in the environment, and
// "secretref:env:NAME" or "secretref:file:/path" reference a variable or a
// file holding the secret.
package config
