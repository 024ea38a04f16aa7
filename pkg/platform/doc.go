// SPDX-License-Identifier: MPL-2.0

// Package platform holds the small amount of OS-specific knowledge modpal
// needs: OS name constants, which names are unsafe as directory names, and
// how to reach the host when running inside a Flatpak or Snap sandbox.
package platform
