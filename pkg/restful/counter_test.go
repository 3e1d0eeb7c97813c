package restful

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_Sequence(t *testing.T) {
	c := NewCounter(0)
	assert.Equal(t, uint64(0), c.Next())
	assert.Equal(t, uint64(1), c.Next())
	assert.Equal(t, uint64(2), c.Next())

	c = NewCounter(41)
	assert.Equal(t, uint64(41), c.Next())
}

func TestCounter_Concurrent(t *testing.T) {
	c := NewCounter(0)
	const workers, per = 16, 200

	var mu sync.Mutex
	seen := make(map[uint64]bool, workers*per)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range per {
				n := c.Next()
				mu.Lock()
				seen[n] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*per)
	for i := uint64(0); i < workers*per; i++ {
		assert.True(t, seen[i], "missing %d", i)
	}
}

func TestFormatTransactionID(t *testing.T) {
	tests := []struct {
		name  string
		n     uint64
		parts []string
		want  string
	}{
		{"number only", 7, nil, "007"},
		{"name and method", 7, []string{"create-user", "POST"}, "007.create-user.POST"},
		{"empty parts skipped", 12, []string{"", "GET"}, "012.GET"},
		{"wide number", 1234, []string{"GET"}, "1234.GET"},
		{"unsafe name", 3, []string{"a/b", "GET"}, "003.a_b.GET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTransactionID(tt.n, tt.parts...))
		})
	}
}

func TestClient_MakeTransactionID(t *testing.T) {
	c := New("http://example.invalid", WithSequence(NewCounter(5)), WithLogDir(t.TempDir()))
	assert.Equal(t, "005.GET", c.MakeTransactionID("", "GET"))
	assert.Equal(t, "006.login.POST", c.MakeTransactionID("login", "POST"))
}

func TestProcessCounter_Shared(t *testing.T) {
	a := New("", WithLogDir(t.TempDir()))
	b := New("", WithLogDir(t.TempDir()))
	assert.Same(t, ProcessCounter(), a.seq)
	assert.Same(t, a.seq, b.seq)
}
