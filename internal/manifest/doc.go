// Package manifest describes a packaging run for later verification.
//
// After the archive is written, the packager saves a YAML manifest next to it
// with SHA512 checksums of the archive and of every packaged file. Reviewers
// can diff two manifests to see what changed between submissions.
package manifest
