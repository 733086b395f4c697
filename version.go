/*
 * MIT License
 * Copyright (c) 2026 Crrow
 */

package rediscli

// Version is the semantic version of the redis-cli and redis-server binaries.
// For development builds, this will be "dev".
// For release builds, run: just version-update
const Version = "0.1.0"
