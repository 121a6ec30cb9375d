// SPDX-License-Identifier: MPL-2.0

package intent

import "sync/atomic"

// maxRequestCode keeps codes within the lower 16 bits, which hosts reserve for
// activity request codes.
const maxRequestCode = 0xFFFF

// RequestCodes hands out request codes in sequence, wrapping at 0xFFFF.
// It is a convenience for callers; the package itself never checks codes.
type RequestCodes struct {
	next atomic.Uint32
}

// NewRequestCodes returns a sequence starting at start (masked to 16 bits).
func NewRequestCodes(start int32) *RequestCodes {
	r := &RequestCodes{}
	r.next.Store(uint32(start) & maxRequestCode)
	return r
}

// Next returns the next code.
func (r *RequestCodes) Next() int32 {
	return int32((r.next.Add(1) - 1) & maxRequestCode)
}
