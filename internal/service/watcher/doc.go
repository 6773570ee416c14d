// Package watcher repackages the extension whenever its source changes.
//
// It registers the source directory tree with fsnotify (excluded subtrees are
// never watched), debounces event bursts, and reruns the packager once the
// tree settles. Events for the output archive and manifest are ignored to
// avoid self-triggering.
package watcher
