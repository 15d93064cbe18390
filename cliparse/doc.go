// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first (via godotenv); a
missing file is not an error.

# Config Fields

  - Port: Server listen port (default: 4170)
  - DatabaseURL: PostgreSQL connection string (required)
  - SessionSecret: Secret for signing session tokens (required)

# CLI Flags

	-p                Server port
	-d                Database URL
	-session-secret   Session token signing secret

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	SESSION_SECRET → -session-secret

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - SESSION_SECRET must be provided
*/
package cliparse
