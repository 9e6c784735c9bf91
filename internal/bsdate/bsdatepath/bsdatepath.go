// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package bsdatepath derives file and directory paths from the bsdate
// configuration and cache directories, so callers don't duplicate path
// construction logic.
//
// The config directory (appext ConfigDirPath, ~/.config/bsdate by default) contains:
//
//	bsdate.yaml                       Config file
//
// The cache directory (appext CacheDirPath, ~/.cache/bsdate by default) contains:
//
//	v1/conversions/                   Cached remote API conversions
package bsdatepath

import "path/filepath"

// ConfigFileName is the well-known config file name within the config directory.
const ConfigFileName = "bsdate.yaml"

// ConfigFilePath returns the path to the config file within the config directory.
func ConfigFilePath(configDirPath string) string {
	return filepath.Join(configDirPath, ConfigFileName)
}

// CacheDirV1Path returns the versioned cache directory within the cache directory.
func CacheDirV1Path(cacheDirPath string) string {
	return filepath.Join(cacheDirPath, "v1")
}

// ConversionCacheDirPath returns the directory of the persistent remote conversion cache.
func ConversionCacheDirPath(cacheDirPath string) string {
	return filepath.Join(CacheDirV1Path(cacheDirPath), "conversions")
}
