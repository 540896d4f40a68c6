// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the taskdeck CLI commands.
//
// The command tree is built around an App composition root so tests can
// inject an executor, a notifier, a config provider and the standard
// streams. Task exit codes pass through the process exit status via
// ExitError.
package cmd
