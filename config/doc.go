// Package config loads the ckanta configuration file and resolves which CKAN
// instance an invocation talks to.
//
// The configuration file is INI formatted. Each CKAN instance lives in its own
// "instance:<name>" section, and tool-wide preferences live in the "ckanta"
// section:
//
//	[ckanta]
//	default-instance = dev
//	output = table
//
//	[instance:local]
//	urlbase = http://localhost:5000
//	apikey = 29dc8b28d78g923basd43w
//
//	[instance:dev]
//	urlbase = http://dev.local.io:5000
//	apikey = 29chibads978237dluw072as3
//
// # Settings Precedence
//
// Settings are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. The [ckanta] section of the configuration file
//  3. Environment variables (CKANTA_ prefix, "-" replaced by "_")
//  4. CLI flags that were explicitly set
//
// # Instance Resolution
//
// Resolve picks the connection for the current invocation. A URL base and API
// key given together bypass the file entirely. Otherwise the named instance
// (or the default instance) is looked up, and a lone URL base or API key
// override replaces the matching field.
package config
