// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a task when source files change.
//
// A Watcher monitors a crate directory with fsnotify, filters events through
// doublestar patterns (by default Rust sources, Cargo.toml and assets) and
// fires a callback once the debounce window closes. Build output under
// target/ is never watched.
package watch
