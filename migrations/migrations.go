// Package migrations embeds the warehouse DDL.
package migrations

import _ "embed"

// Schema is the idempotent star-schema DDL executed by cmd/migrate.
//
//go:embed schema.sql
var Schema string
