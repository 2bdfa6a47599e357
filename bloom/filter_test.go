package bloom_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/fwojciec/bookhaven/bloom"
	"github.com/stretchr/testify/assert"
)

func TestSet_Add(t *testing.T) {
	t.Parallel()

	s := bloom.NewSet(1000, 1e-7)

	assert.True(t, s.Add("http://books.toscrape.com/catalogue/a_1/index.html"))
	assert.False(t, s.Add("http://books.toscrape.com/catalogue/a_1/index.html"), "second add reports seen")
	assert.True(t, s.Add("http://books.toscrape.com/catalogue/b_2/index.html"))
}

func TestSet_Contains(t *testing.T) {
	t.Parallel()

	s := bloom.NewSet(1000, 1e-7)

	assert.False(t, s.Contains("key"))
	s.Add("key")
	assert.True(t, s.Contains("key"))
	assert.False(t, s.Contains("other"))
}

func TestSet_Len(t *testing.T) {
	t.Parallel()

	s := bloom.NewSet(1000, 1e-7)
	assert.Equal(t, uint(0), s.Len())

	for i := range 3 {
		s.Add(fmt.Sprintf("book-%d", i))
	}
	s.Add("book-0")

	count := s.Len()
	assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
}

func TestSet_NoFalseNegatives(t *testing.T) {
	t.Parallel()

	s := bloom.NewSet(1000, 1e-7)

	for i := range 1000 {
		s.Add(fmt.Sprintf("http://books.toscrape.com/catalogue/book_%d/index.html", i))
	}
	for i := range 1000 {
		assert.True(t, s.Contains(fmt.Sprintf("http://books.toscrape.com/catalogue/book_%d/index.html", i)))
	}
}

func TestSet_ConcurrentAdd(t *testing.T) {
	t.Parallel()

	s := bloom.NewSet(1000, 1e-7)

	var wg sync.WaitGroup
	var mu sync.Mutex
	added := 0
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Add("shared") {
				mu.Lock()
				added++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, added, "exactly one goroutine should see the key as new")
}
