package progress

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBar_Disabled(t *testing.T) {
	p := NewBar(false, &bytes.Buffer{}, "embedding")
	assert.Nil(t, p)
	assert.NotPanics(t, func() {
		p.Start(3)
		p.Increment()
		p.Finish()
	})
}

func TestBar_ConcurrentIncrements(t *testing.T) {
	var buf bytes.Buffer
	p := NewBar(true, &buf, "embedding")
	p.Start(50)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Increment()
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), p.bar.State().CurrentNum)
	p.Finish()
	assert.True(t, p.bar.IsFinished())
}

func TestBar_ZeroTotalIsNoop(t *testing.T) {
	var buf bytes.Buffer
	p := NewBar(true, &buf, "embedding")
	p.Start(0)
	p.Increment()
	p.Finish()
	assert.Nil(t, p.bar)
	assert.Empty(t, buf.String())
}

func TestStartSpinner_Disabled(t *testing.T) {
	stop := StartSpinner(false, "loading")
	assert.NotPanics(t, stop)
}
