// Package config defines the application's configuration structures and the
// logic for loading them from environment variables and config files.
//
// Configuration is grouped into Server, Database and Auth sections. Values
// come from TASKBOARD_-prefixed environment variables, with an optional
// config.yaml in the working directory as a lower-precedence source. Load
// validates the result with go-playground/validator before returning it.
package config
