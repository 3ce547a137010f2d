package rag

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_RenderLastFourOfSix(t *testing.T) {
	h := NewHistory()
	for i := 1; i <= 6; i++ {
		h.Record(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	got := h.Render(4)
	want := strings.Join([]string{
		"User: q3", "Assistant: a3",
		"User: q4", "Assistant: a4",
		"User: q5", "Assistant: a5",
		"User: q6", "Assistant: a6",
	}, "\n")
	assert.Equal(t, want, got)
	assert.Equal(t, 6, h.Len(), "render does not consume turns")
}

func TestHistory_RenderEmpty(t *testing.T) {
	h := NewHistory()
	assert.Equal(t, "", h.Render(4))
	h.Record("q", "a")
	assert.Equal(t, "", h.Render(0))
}

func TestHistory_RenderShorterThanWindow(t *testing.T) {
	h := NewHistory()
	h.Record("hello", "hi there")
	assert.Equal(t, "User: hello\nAssistant: hi there", h.Render(4))
}

func TestHistory_Turns(t *testing.T) {
	h := NewHistory()
	h.Record("q1", "a1")
	h.Record("q2", "a2")
	turns := h.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, "q1", turns[0].Query)

	turns[0].Query = "mutated"
	assert.Equal(t, "q1", h.Turns()[0].Query, "Turns returns a copy")
}

func TestHistory_ConcurrentRecord(t *testing.T) {
	h := NewHistory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Record(fmt.Sprint(i), "ok")
			_ = h.Render(4)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, h.Len())
}
