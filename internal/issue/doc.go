// SPDX-License-Identifier: MPL-2.0

// Package issue turns modpal errors into user-facing messages: an
// ActionableError says what failed and what to try next, and the issue
// catalog holds longer Markdown guidance rendered with glamour in verbose
// mode.
package issue
