// SPDX-License-Identifier: MPL-2.0

package intent_test

import (
	"sync"
	"testing"

	"github.com/invowk/intentkit/pkg/intent"
)

func TestRequestCodesSequence(t *testing.T) {
	t.Parallel()

	rc := intent.NewRequestCodes(0xFFFE)
	want := []int32{0xFFFE, 0xFFFF, 0, 1}
	for i, w := range want {
		if got := rc.Next(); got != w {
			t.Errorf("Next() #%d = %d, want %d", i, got, w)
		}
	}
}

func TestRequestCodesConcurrent(t *testing.T) {
	t.Parallel()

	rc := intent.NewRequestCodes(1)
	const n = 100
	var (
		mu   sync.Mutex
		seen = make(map[int32]bool, n)
		wg   sync.WaitGroup
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code := rc.Next()
			mu.Lock()
			seen[code] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	if len(seen) != n {
		t.Errorf("distinct codes = %d, want %d", len(seen), n)
	}
}
