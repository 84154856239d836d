// Package config handles configuration loading, parsing, and validation
// from various sources (.env file, config file, environment variables). It
// provides type-safe access to application settings needed by different
// components while keeping configuration details separate from business logic.
//
// Environment variables use the SLOTSWAP_ prefix with dots replaced by
// underscores, e.g. SLOTSWAP_SERVER_PORT or SLOTSWAP_AUTH_JWT_SECRET.
package config
