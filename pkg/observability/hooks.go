// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about sheet fetches, label rendering, cache operations and
// outgoing HTTP requests.
//
// # Architecture
//
// Each event category has a hook interface, a no-op default and a setter.
// Hooks are registered by main, never by libraries, which keeps the library
// packages free of backend imports.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLoaderHooks(&myLoaderHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Loader().OnFetchStart(ctx, url)
//	// ... fetch and parse ...
//	observability.Loader().OnFetchComplete(ctx, url, products, skipped, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Loader Hooks
// =============================================================================

// LoaderHooks receives events from the spreadsheet loader.
type LoaderHooks interface {
	// OnFetchStart fires before the sheet is downloaded.
	OnFetchStart(ctx context.Context, url string)

	// OnFetchComplete fires after download and parse, successful or not.
	OnFetchComplete(ctx context.Context, url string, products, skipped int, duration time.Duration, err error)

	// OnRowSkipped fires for every row dropped with a parse error.
	OnRowSkipped(ctx context.Context, row int, err error)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from the label renderer.
type RenderHooks interface {
	OnRenderStart(ctx context.Context, product string, formats []string)
	OnRenderComplete(ctx context.Context, product string, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLoaderHooks is a no-op implementation of LoaderHooks.
type NoopLoaderHooks struct{}

func (NoopLoaderHooks) OnFetchStart(context.Context, string) {}
func (NoopLoaderHooks) OnFetchComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopLoaderHooks) OnRowSkipped(context.Context, int, error) {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, string, []string) {}
func (NoopRenderHooks) OnRenderComplete(context.Context, string, []string, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	loaderHooks LoaderHooks = NoopLoaderHooks{}
	renderHooks RenderHooks = NoopRenderHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetLoaderHooks registers custom loader hooks.
// This should be called once at application startup before any fetch.
func SetLoaderHooks(h LoaderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		loaderHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Loader returns the registered loader hooks.
func Loader() LoaderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return loaderHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	loaderHooks = NoopLoaderHooks{}
	renderHooks = NoopRenderHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
