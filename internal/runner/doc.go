// SPDX-License-Identifier: MPL-2.0

// Package runner turns task descriptors into subprocess invocations and runs
// them.
//
// BuildInvocation is pure. Runner adds the failure policy on top of an
// Executor: a rerun-notify task that fails is run again with its output
// passed through, and a notification summarizing the compiler diagnostics of
// the first run is sent. A non-zero exit is a Result, not an error; errors are
// reserved for processes that could not be started.
package runner
