// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of markdown guidance for
// the failures intentkit users run into: missing host context, unknown symbols,
// malformed URIs, dispatch and retrieval failures, and configuration problems.
package issue
