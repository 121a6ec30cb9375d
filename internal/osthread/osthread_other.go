// SPDX-License-Identifier: MPL-2.0

//go:build !linux

package osthread

import (
	"bytes"
	"runtime"
	"strconv"
)

// ID returns the id of the calling goroutine. Without a portable thread id
// syscall this is the best available proxy: a goroutine locked to its thread
// maps one-to-one onto it for the lifetime of the lock.
func ID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// "goroutine 18 [running]:..."
	field := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(field, ' '); i > 0 {
		field = field[:i]
	}
	id, err := strconv.ParseUint(string(field), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
