package cancel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenStartsNotCancelled(t *testing.T) {
	tok := New()
	assert.False(t, tok.IsCancelled())
}

func TestTokenCancelIsIdempotent(t *testing.T) {
	tok := New()
	tok.Cancel()
	tok.Cancel()
	assert.True(t, tok.IsCancelled())
}

func TestTokenCancelIsConcurrencySafe(t *testing.T) {
	tok := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok.Cancel()
			_ = tok.IsCancelled()
		}()
	}
	wg.Wait()
	assert.True(t, tok.IsCancelled())
}
