// Package config loads typed configuration structs from environment
// variables, with an optional .env file for local development. Each struct
// type is parsed once per process and cached; repeated loads of the same
// type return the cached value.
package config
