// Package cli implements the relayd command line.
//
// # Commands
//
// serve - start the relay (the default when no command is given):
//
//	relayd [--config relay.yaml] [--env-file .env] serve [--port 8000]
//
// config - print the effective configuration, token masked:
//
//	relayd config --format json
//
// # Global Flags
//
//	--config, -c   YAML or JSON config file (env: RELAY_CONFIG)
//	--env-file     dotenv file read before the environment (default: .env)
//	--log-level    debug, info, warn, error (env: LOG_LEVEL, default: info)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// Configuration precedence, lowest first: built-in defaults, config file,
// dotenv file, process environment. See package config for the variables.
package cli
