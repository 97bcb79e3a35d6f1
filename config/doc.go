// Package config loads binary configuration from a YAML or JSON file, a
// .env file and the environment.
//
// # Usage
//
//	var cfg fileConfig
//	if err := config.Load("httpservice", &cfg, config.WithConfigFile(path)); err != nil {
//	    return err
//	}
//
// Environment variables override file values. They use the upper-cased
// binary name as prefix and underscores for nesting, so service.host is
// read from HTTPSERVICE_SERVICE_HOST. Variables from the .env file never
// override ones already set in the process environment.
package config
