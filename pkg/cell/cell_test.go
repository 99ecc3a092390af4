package cell

import (
	"sync"
	"testing"
	"time"
)

func TestNewIsFull(t *testing.T) {
	c := New(42)
	if got := c.Take(); got != 42 {
		t.Errorf("Take() = %d, want 42", got)
	}
}

func TestTakeEmptiesCell(t *testing.T) {
	c := New("a")
	c.Take()

	done := make(chan string, 1)
	go func() { done <- c.Take() }()

	select {
	case v := <-done:
		t.Fatalf("Take on empty cell returned %q, want block", v)
	case <-time.After(20 * time.Millisecond):
	}

	c.Put("b")
	select {
	case v := <-done:
		if v != "b" {
			t.Errorf("Take() = %q, want %q", v, "b")
		}
	case <-time.After(time.Second):
		t.Fatal("Take did not resume after Put")
	}
}

func TestPutBlocksOnFullCell(t *testing.T) {
	c := New(1)

	done := make(chan struct{})
	go func() {
		c.Put(2)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Put on full cell returned, want block")
	case <-time.After(20 * time.Millisecond):
	}

	if got := c.Take(); got != 1 {
		t.Errorf("Take() = %d, want 1", got)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Put did not resume after Take")
	}
	if got := c.Take(); got != 2 {
		t.Errorf("Take() = %d, want 2", got)
	}
}

func TestReadLeavesValue(t *testing.T) {
	c := New(7)
	if got := c.Read(); got != 7 {
		t.Errorf("Read() = %d, want 7", got)
	}
	if got := c.Take(); got != 7 {
		t.Errorf("Take() after Read = %d, want 7", got)
	}
}

func TestModifyIsLinearizable(t *testing.T) {
	const workers = 16
	const rounds = 500

	c := New(0)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				c.Modify(func(n int) int { return n + 1 })
			}
		}()
	}
	wg.Wait()

	if got := c.Take(); got != workers*rounds {
		t.Errorf("counter = %d, want %d", got, workers*rounds)
	}
}

func TestTakeComputePutSequencesDoNotInterleave(t *testing.T) {
	const workers = 8
	const rounds = 200

	c := New(0)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				v := c.Take()
				c.Put(v + 1)
			}
		}()
	}
	wg.Wait()

	if got := c.Read(); got != workers*rounds {
		t.Errorf("counter = %d, want %d", got, workers*rounds)
	}
}
