package config

import "errors"

// Errors for configuration file operations.
var (
	ErrConfigNotFound      = errors.New("config file not found")
	ErrNoConfig            = errors.New("no config file loaded")
	ErrInstanceNotFound    = errors.New("config section not found")
	ErrInvalidInstanceName = errors.New("invalid instance name")
)

// Errors for instance validation.
var (
	ErrURLBaseRequired = errors.New("url base is required")
	ErrInvalidURLBase  = errors.New("url base must be an http or https URL")
)
