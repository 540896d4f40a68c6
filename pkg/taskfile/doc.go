// SPDX-License-Identifier: MPL-2.0

// Package taskfile defines task descriptors and the taskdeck.cue file that
// declares them.
//
// A Task is an immutable record of one subprocess invocation: the program and
// its arguments, environment overrides applied only to that subprocess, how
// its output is presented, and what happens when it fails. The package also
// carries the built-in task table used when no taskfile overrides it.
package taskfile
