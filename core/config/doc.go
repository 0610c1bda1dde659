// Package config loads the application configuration from environment
// variables and an optional .env file.
//
// Each core package owns its partial Config struct; this package composes
// them and binds defaults declared in `default:` struct tags via reflection,
// so adding a new setting is a one-line change in the owning package.
//
// Environment variables map onto nested keys with underscores, e.g.
// MEMORY_ROOT sets memory.root and DATABASE_DRIVER sets database.driver.
package config
