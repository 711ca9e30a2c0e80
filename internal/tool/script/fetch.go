package script

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dop251/goja"
)

// httpDoer is the HTTP surface fetch needs.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type fetcher struct {
	client   httpDoer
	maxBytes int64
}

type fetchResult struct {
	status     int
	statusText string
	url        string
	headers    map[string]string
	body       string
}

// fetch is the opt-in network global. The request runs synchronously with
// the session deadline; the returned promise is already settled.
func (s *session) fetch(call goja.FunctionCall) goja.Value {
	promise, resolve, reject := s.vm.NewPromise()
	res, err := s.doFetch(call)
	if err != nil {
		reject(s.vm.NewGoError(err))
	} else {
		resolve(s.responseObject(res))
	}
	return s.vm.ToValue(promise)
}

func (s *session) doFetch(call goja.FunctionCall) (*fetchResult, error) {
	rawURL := call.Argument(0).String()
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", errNetworkScheme, rawURL)
	}

	method := http.MethodGet
	var body io.Reader
	headers := map[string]string{}
	if opts, ok := call.Argument(1).(*goja.Object); ok {
		if m := opts.Get("method"); m != nil && !goja.IsUndefined(m) {
			method = strings.ToUpper(m.String())
		}
		if b := opts.Get("body"); b != nil && !goja.IsUndefined(b) && !goja.IsNull(b) {
			body = strings.NewReader(b.String())
		}
		if h, ok := opts.Get("headers").(*goja.Object); ok {
			for _, k := range h.Keys() {
				headers[k] = h.Get(k).String()
			}
		}
	}

	req, err := http.NewRequestWithContext(s.ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.fetcher.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.fetcher.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	res := &fetchResult{
		status:     resp.StatusCode,
		statusText: http.StatusText(resp.StatusCode),
		url:        u.String(),
		headers:    map[string]string{},
		body:       string(data),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		res.url = resp.Request.URL.String()
	}
	for k, v := range resp.Header {
		res.headers[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	return res, nil
}

func (s *session) responseObject(res *fetchResult) *goja.Object {
	obj := s.vm.NewObject()
	_ = obj.Set("status", res.status)
	_ = obj.Set("ok", res.status >= 200 && res.status < 300)
	_ = obj.Set("statusText", res.statusText)
	_ = obj.Set("url", res.url)
	_ = obj.Set("headers", res.headers)
	_ = obj.Set("text", func(goja.FunctionCall) goja.Value {
		p, resolve, _ := s.vm.NewPromise()
		resolve(res.body)
		return s.vm.ToValue(p)
	})
	_ = obj.Set("json", func(goja.FunctionCall) goja.Value {
		p, resolve, reject := s.vm.NewPromise()
		var v any
		if err := json.Unmarshal([]byte(res.body), &v); err != nil {
			reject(s.vm.NewGoError(fmt.Errorf("invalid json body: %w", err)))
		} else {
			resolve(v)
		}
		return s.vm.ToValue(p)
	})
	return obj
}
