// Package config holds the configuration state for one updater run.
//
// The field and flag sets are fixed at compile time (see fields.go); field
// keys double as the environment variable names passed to the updater
// script. A Store is seeded once at startup, with each field taking the
// first available of: an explicit YAML override, the process environment, a
// detected value, the hardcoded default, else the empty string.
//
// Using a key outside the fixed tables is a programming error and panics;
// it is deliberately not part of the recoverable error surface.
//
// # Override File
//
// An optional YAML file (--config / NEXUP_CONFIG) supplies explicit
// overrides:
//
//	fields:
//	  DOWNLOAD_URL: "https://updates.example.com/nexsoft.tar.gz"
//	  SERIAL_NUMBER: "NX-004512"
//	flags:
//	  NON_INTERACTIVE: true
//
// nexup never writes this file; configuration edits made in the UI live only
// for the current run.
package config
