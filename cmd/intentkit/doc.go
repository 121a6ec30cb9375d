// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the intentkit command-line interface.
//
// The command tree is built around an App, which carries the configuration
// provider and output streams. 'intentkit sim' runs builder chains against the
// simulated host, so intents can be composed and launched off-device and the
// launch the host observed can be inspected.
package cmd
