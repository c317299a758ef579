package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	l := NoopLoaderHooks{}
	l.OnFetchStart(ctx, "https://example.com/sheet.csv")
	l.OnFetchComplete(ctx, "https://example.com/sheet.csv", 12, 1, time.Second, nil)
	l.OnRowSkipped(ctx, 4, errors.New("bad cell"))

	r := NoopRenderHooks{}
	r.OnRenderStart(ctx, "Granola Bar", []string{"pdf", "png"})
	r.OnRenderComplete(ctx, "Granola Bar", []string{"pdf", "png"}, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "catalog")
	c.OnCacheMiss(ctx, "snapshot")
	c.OnCacheSet(ctx, "snapshot", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "docs.google.com", "/spreadsheets/d/abc/export")
	h.OnResponse(ctx, "GET", "docs.google.com", "/spreadsheets/d/abc/export", 200, time.Second)
	h.OnError(ctx, "GET", "docs.google.com", "/spreadsheets/d/abc/export", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Loader().(NoopLoaderHooks); !ok {
		t.Error("Loader() should return NoopLoaderHooks by default")
	}
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customLoader := &testLoaderHooks{}
	SetLoaderHooks(customLoader)
	if Loader() != customLoader {
		t.Error("SetLoaderHooks should set custom hooks")
	}

	customRender := &testRenderHooks{}
	SetRenderHooks(customRender)
	if Render() != customRender {
		t.Error("SetRenderHooks should set custom hooks")
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
	if _, ok := Loader().(NoopLoaderHooks); !ok {
		t.Error("Reset() should restore NoopLoaderHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testLoaderHooks{}
	SetLoaderHooks(custom)
	SetLoaderHooks(nil)

	if Loader() != custom {
		t.Error("SetLoaderHooks(nil) should be ignored")
	}
}

// Test implementations
type testLoaderHooks struct{ NoopLoaderHooks }
type testRenderHooks struct{ NoopRenderHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
