// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing errors for taskdeck.
//
// ActionableError attaches an operation, a resource and remediation hints to
// an error. The Issue catalog holds longer markdown guidance, rendered with
// glamour, for the failures users hit most often.
package issue
