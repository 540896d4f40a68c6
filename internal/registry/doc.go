// SPDX-License-Identifier: MPL-2.0

// Package registry maps task names to task descriptors.
//
// A Registry is populated once at startup, from the built-in table and an
// optional taskfile, and is only read afterwards.
package registry
