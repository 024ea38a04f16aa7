// SPDX-License-Identifier: MPL-2.0

// modpal manages mod loaders and mods for installed games.
package main

import cmd "github.com/modpal/modpal/cmd/modpal"

func main() {
	cmd.Execute()
}
