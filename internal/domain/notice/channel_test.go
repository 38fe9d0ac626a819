package notice

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) listen(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func TestChannel_SetReplaces(t *testing.T) {
	c := New(WithDuration(0))
	c.Set("first")
	c.Set("second")

	got, ok := c.Current()
	if !ok || got != "second" {
		t.Errorf("Current() = %q, %v; want %q, true", got, ok, "second")
	}
}

func TestChannel_SetEmptyClears(t *testing.T) {
	c := New(WithDuration(0))
	c.Set("boom")
	c.Set("")

	if got, ok := c.Current(); ok || got != "" {
		t.Errorf("Current() = %q, %v; want cleared", got, ok)
	}
}

func TestChannel_ClearIdempotent(t *testing.T) {
	c := New(WithDuration(0))
	rec := &recorder{}
	c.Register(rec.listen)

	c.Set("boom")
	c.Clear()
	c.Clear()

	if _, ok := c.Current(); ok {
		t.Error("message should stay cleared")
	}
	got := rec.all()
	if len(got) != 2 || got[0] != "boom" || got[1] != "" {
		t.Errorf("listener calls = %q, want [boom \"\"]", got)
	}
}

func TestChannel_AutoClear(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := New(WithDuration(20 * time.Millisecond))
	defer c.Close()

	c.Set("boom")
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, ok := c.Current(); !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("message was not auto-cleared")
}

func TestChannel_NewerMessageKeepsFullDuration(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := New(WithDuration(60 * time.Millisecond))
	defer c.Close()

	c.Set("old")
	time.Sleep(40 * time.Millisecond)
	c.Set("new")
	time.Sleep(40 * time.Millisecond)

	// The first timer would have fired by now; it must not clear "new".
	if got, ok := c.Current(); !ok || got != "new" {
		t.Errorf("Current() = %q, %v; want %q still visible", got, ok, "new")
	}
}

func TestChannel_RegisterReplacesListener(t *testing.T) {
	c := New(WithDuration(0))
	first := &recorder{}
	second := &recorder{}

	c.Register(first.listen)
	c.Register(second.listen)
	c.Set("boom")

	if len(first.all()) != 0 {
		t.Errorf("replaced listener received %q", first.all())
	}
	if got := second.all(); len(got) != 1 || got[0] != "boom" {
		t.Errorf("active listener received %q, want [boom]", got)
	}
}

func TestChannel_RegisterReceivesVisibleMessage(t *testing.T) {
	c := New(WithDuration(0))
	c.Set("already here")

	rec := &recorder{}
	c.Register(rec.listen)

	if got := rec.all(); len(got) != 1 || got[0] != "already here" {
		t.Errorf("listener received %q, want [already here]", got)
	}
}

func TestChannel_UnregisterStopsDelivery(t *testing.T) {
	c := New(WithDuration(0))
	rec := &recorder{}
	c.Register(rec.listen)
	c.Unregister()
	c.Set("boom")

	if len(rec.all()) != 0 {
		t.Errorf("unregistered listener received %q", rec.all())
	}
}

func TestChannel_ListenerPanicSwallowed(t *testing.T) {
	c := New(WithDuration(0))
	c.Register(func(string) { panic("banner broke") })

	c.Set("boom")

	if got, _ := c.Current(); got != "boom" {
		t.Errorf("Current() = %q, want %q", got, "boom")
	}
}

func TestChannel_CloseStopsTimer(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := New(WithDuration(10 * time.Millisecond))
	c.Set("boom")
	c.Close()
	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Current(); !ok {
		t.Error("Close should stop the auto-clear timer")
	}
}

func TestContext(t *testing.T) {
	c := New()
	ctx := WithChannel(context.Background(), c)
	if FromContext(ctx) != c {
		t.Error("FromContext did not return injected channel")
	}
	if FromContext(context.Background()) != nil {
		t.Error("FromContext on empty context should be nil")
	}

	defer func() {
		if recover() == nil {
			t.Error("MustFromContext should panic outside provider scope")
		}
	}()
	MustFromContext(context.Background())
}
