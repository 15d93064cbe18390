// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Ripped or Stamped API server.

Ripped or Stamped is the voting backend for a photography web series: each
episode the audience first picks which paper stock the photo is printed on,
then picks the challenges (a benchmark, a trap, and a community-submitted
ridiculous option) for the shoot. At the end the print is either ripped or
stamped into the archive.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... SESSION_SECRET=... go run .

Or with flags:

	go run . -p 4170 -d "postgres://..." -session-secret "..."

A .env file in the working directory is loaded automatically.

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string
  - SESSION_SECRET (-session-secret): HMAC key for session token verification

Optional settings:

  - PORT (-p): Server port (default: 4170)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (admin episodes, voting)
  - voting: Episode state machine, ballots, tallies
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, identity extraction, JSON helpers
  - models: Request/response types
  - auth: Session token verification, ID and slug helpers
  - audit: Best-effort audit trail
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
