// Package archive wraps zip writing and read-back enumeration.
//
// The Writer streams files into DEFLATE-compressed entries; List reopens a
// finished archive to enumerate its table of contents for reporting and tests.
package archive
