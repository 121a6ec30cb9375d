// SPDX-License-Identifier: MPL-2.0

// Command intentkit composes and launches Android intents through a simulated
// or real host runtime.
package main

import cmd "github.com/invowk/intentkit/cmd/intentkit"

func main() {
	cmd.Execute()
}
