// SPDX-License-Identifier: MPL-2.0

// Command taskdeck runs named task shortcuts for a cargo project.
package main

import cmd "github.com/taskdeck/taskdeck/cmd/taskdeck"

func main() {
	cmd.Execute()
}
