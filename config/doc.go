// Package config loads the auditorium application configuration.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults
//  2. a YAML file (auditorium.yaml)
//  3. the environment, optionally seeded from a .env file
//
// The environment variables match the original deployment: PORT,
// DATABASE_URL, GEMINI_API_KEY, OPENAI_API_KEY, plus AUDITORIUM_STORAGE
// and AUDITORIUM_DATA_DIR.
package config
