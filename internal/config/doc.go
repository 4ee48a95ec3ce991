// Package config loads and validates the static configuration surface of a
// consolidation run: the target district identifier, the three expected school
// year labels, the per-category source spreadsheet paths, validator
// thresholds, output locations, and logging settings.
//
// Configuration is layered: defaults, then an optional YAML file, then
// environment variables with the EDUPULSE prefix. Environment values win.
// Every path is resolved to an absolute path during Load so no stage ever
// depends on the process working directory.
package config
