// SPDX-License-Identifier: MPL-2.0

package platform

// runtime.GOOS values modpal branches on.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)
