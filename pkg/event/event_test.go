package event_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/pkg/event"
)

func TestFireCallsListenersInOrder(t *testing.T) {
	d := event.New()
	var got []string
	d.Listen("order.placed", func(p interface{}) { got = append(got, "a:"+p.(string)) })
	d.Listen("order.placed", func(p interface{}) { got = append(got, "b:"+p.(string)) })
	d.Listen("other", func(interface{}) { got = append(got, "other") })

	d.Fire("order.placed", "1")
	assert.Equal(t, []string{"a:1", "b:1"}, got)

	d.Flush()
	d.Fire("order.placed", "2")
	assert.Len(t, got, 2)
}

func TestFireAsyncAndNilDispatcher(t *testing.T) {
	d := event.New()
	var wg sync.WaitGroup
	wg.Add(2)
	d.Listen("x", func(interface{}) { wg.Done() })
	d.Listen("x", func(interface{}) { wg.Done() })
	d.FireAsync("x", nil)
	wg.Wait()

	var none *event.Dispatcher
	assert.NotPanics(t, func() { none.Fire("x", nil) })
}
