// Package config loads the inboxsummary configuration.
//
// Values are resolved with viper from, lowest to highest precedence:
// built-in defaults, an optional YAML file, a .env file, the process
// environment and explicitly set command-line flags.
//
//	# ~/.config/inboxsummary/config.yaml
//	label: AI Summary
//	trigger: label
//	attach_pdf: true
//	poll_interval: 5m
//
// The two secrets are normally supplied through the environment:
//
//	GEMINI_API_KEY=...
//	RESPONSE_EMAIL=me@example.com
package config
