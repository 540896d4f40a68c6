// SPDX-License-Identifier: MPL-2.0

// Package notify tells the user that a task failed, through the log, the
// terminal bell or a desktop notification.
package notify
