// Package server holds the configuration for the read-only catalog API.
// The handlers themselves live in feature/catalogapi.
package server
