package usecase

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"

	"github.com/JosineyAlves/adcloner-sub000/pkg/logger"
	"github.com/JosineyAlves/adcloner-sub000/pkg/metrics"
)

// One registry per test binary; promauto panics on duplicate registration.
var (
	testLogger  = logger.New("fatal")
	testMetrics = metrics.New()
)

type createCall struct {
	Path string
	Form url.Values
}

// fakeGraphAPI scripts Graph responses per path and records every call.
type fakeGraphAPI struct {
	mu      sync.Mutex
	getFn   func(path string, params url.Values, out any) error
	creates []createCall
	gets    []string

	createFn func(path string, form url.Values) (string, error)
}

func (f *fakeGraphAPI) Get(_ context.Context, path string, params url.Values, out any) error {
	f.mu.Lock()
	f.gets = append(f.gets, path)
	f.mu.Unlock()

	if f.getFn == nil {
		return nil
	}
	return f.getFn(path, params, out)
}

func (f *fakeGraphAPI) Create(_ context.Context, path string, form url.Values) (string, error) {
	f.mu.Lock()
	f.creates = append(f.creates, createCall{Path: path, Form: cloneValues(form)})
	f.mu.Unlock()

	if f.createFn == nil {
		return "created_1", nil
	}
	return f.createFn(path, form)
}

func (f *fakeGraphAPI) getCalls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.gets {
		if p == path {
			n++
		}
	}
	return n
}

func (f *fakeGraphAPI) createdPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	paths := make([]string, len(f.creates))
	for i, call := range f.creates {
		paths[i] = call.Path
	}
	return paths
}

func cloneValues(v url.Values) url.Values {
	out := url.Values{}
	for k, vals := range v {
		out[k] = append([]string{}, vals...)
	}
	return out
}

// respond marshals v into the out pointer the way the real client decodes a
// response body.
func respond(out any, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
