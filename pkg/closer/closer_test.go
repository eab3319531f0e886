package closer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloser_ClosesInReverseOrder(t *testing.T) {
	c := NewCloser(time.Second)

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) func() {
		return func() {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	c.AddSimple("db", record("db"))
	c.AddSimple("redis", record("redis"))
	c.AddSimple("kafka", record("kafka"))

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"kafka", "redis", "db"}, order)
}

func TestCloser_JoinsErrorsWithNames(t *testing.T) {
	c := NewCloser(time.Second)
	c.Add("minio", func(context.Context) error { return errors.New("boom") })
	c.Add("redis", func(context.Context) error { return nil })

	err := c.Close(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close minio: boom")
}

func TestCloser_CloseIsIdempotent(t *testing.T) {
	c := NewCloser(time.Second)
	calls := 0
	c.AddSimple("db", func() { calls++ })

	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestCloser_ForcesRemainingAfterTimeout(t *testing.T) {
	c := NewCloser(time.Second)

	forced := make(chan struct{}, 1)
	c.AddSimple("db", func() { forced <- struct{}{} })
	c.Add("slow", func(context.Context) error {
		time.Sleep(300 * time.Millisecond)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown interrupted")

	select {
	case <-forced:
	case <-time.After(time.Second):
		t.Fatal("expected db to be force-closed")
	}
}
