// Package cli provides the command-line interface for kitir.
//
// The cli package implements the kitir commands:
//   - rest get|post|put|patch|delete: send a request and log the transaction
//   - csv: read CSV, TSV or space-separated files, filter rows, render them
//   - pip install|uninstall|verify: run pip through the first base that works
//   - config: display effective configuration and its sources
//   - version: show kitir version
//   - completion: generate shell completion scripts
//
// Configuration is resolved by cliconfig before every command; diagnostics
// go to stderr through the logging package, command results to stdout.
package cli
