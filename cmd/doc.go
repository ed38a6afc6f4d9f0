// Package cmd implements the command-line interface for inboxsummary.
//
// This package provides the following commands:
//   - run: Summarise every triggered message once (default)
//   - watch: Scan the mailbox on an interval and serve metrics and health probes
//   - auth: Authorize access to a Google account
//   - format: Convert model markdown to the HTML used in summary emails
//   - version: Display version information
//
// The run command is the default command when no subcommand is specified.
package cmd
