// Package config defines packaging settings used by the packager and watcher
// and provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the source directory, the output archive path and the
// exclusion rules. Defaults reproduce the original hard-coded ClipMaster
// constants, so running without a settings file behaves like before.
package config
