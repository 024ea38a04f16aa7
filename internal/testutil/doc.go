// SPDX-License-Identifier: MPL-2.0

// Package testutil provides fixtures shared by modpal's tests: file and
// directory helpers that fail the test on error, in-memory mod archives,
// on-disk game layouts the engine detector recognizes, and a recording
// stand-in for the desktop opener.
package testutil
