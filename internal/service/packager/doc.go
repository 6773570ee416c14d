// Package packager builds the submission zip for an extension directory.
//
// It walks the source tree in lexical order, prunes excluded directories
// before descending, skips files whose relative path matches a rule, streams
// everything else into a DEFLATE-compressed archive without a top-level
// wrapper directory, and writes a checksum manifest next to the result.
// A marker file guards against two packaging runs racing on the same output.
package packager
