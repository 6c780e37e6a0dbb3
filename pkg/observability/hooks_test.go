package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnLineupStart(ctx, "cartola")
	p.OnLineupComplete(ctx, "cartola", 17, time.Second, nil)
	p.OnLayoutComplete(ctx, 17, 1, time.Millisecond, nil)
	p.OnFetchStart(ctx, 17, 5)
	p.OnFetchComplete(ctx, 17, 0, time.Second, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	a := NoopAssetHooks{}
	a.OnAssetFetched(ctx, "photo", 1024, time.Millisecond)
	a.OnAssetFailed(ctx, "emblem", "https://img/x.png", errors.New("boom"))
	a.OnAssetDecodeFailed(ctx, 42)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "asset")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Asset().(NoopAssetHooks); !ok {
		t.Error("Asset() should return NoopAssetHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}
	customAsset := &testAssetHooks{}
	SetAssetHooks(customAsset)
	if Asset() != customAsset {
		t.Error("SetAssetHooks should set custom hooks")
	}
	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

func TestLogHooks(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	NewLogHooks(logger).Register()

	Asset().OnAssetDecodeFailed(context.Background(), 42)
	Cache().OnCacheHit(context.Background(), "asset")

	out := buf.String()
	if !strings.Contains(out, "photo undecodable") || !strings.Contains(out, "player=42") {
		t.Errorf("decode failure not logged: %q", out)
	}
	if !strings.Contains(out, "cache hit") {
		t.Errorf("cache hit not logged: %q", out)
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testAssetHooks struct{ NoopAssetHooks }
type testCacheHooks struct{ NoopCacheHooks }
