package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPollHooks{}
	p.OnPollStart(ctx, "calibration")
	p.OnPollTick(ctx, "calibration", "running", time.Second, nil)
	p.OnPollStop(ctx, "calibration")
	p.OnKill(ctx, "proj-1", "autofit", nil)

	l := NoopLayoutHooks{}
	l.OnRelax(ctx, 6, 13, true, time.Millisecond)
	l.OnRender(ctx, "svg", 2048, time.Millisecond, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "chart")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "job", 64)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "localhost", "/api/task/x/type/y")
	h.OnResponse(ctx, "GET", "localhost", "/api/task/x/type/y", 200, time.Second)
	h.OnError(ctx, "GET", "localhost", "/api/task/x/type/y", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Poll().(NoopPollHooks); !ok {
		t.Error("Poll() should return NoopPollHooks by default")
	}
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should return NoopLayoutHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPoll := &testPollHooks{}
	SetPollHooks(customPoll)
	if Poll() != customPoll {
		t.Error("SetPollHooks should set custom hooks")
	}

	customLayout := &testLayoutHooks{}
	SetLayoutHooks(customLayout)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Poll().(NoopPollHooks); !ok {
		t.Error("Reset() should restore NoopPollHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPollHooks{}
	SetPollHooks(custom)
	SetPollHooks(nil)

	if Poll() != custom {
		t.Error("SetPollHooks(nil) should be ignored")
	}
}

type testPollHooks struct{ NoopPollHooks }
type testLayoutHooks struct{ NoopLayoutHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
