package gdata

import (
	"context"
	"io"
	"net/http"
	"sync"

	"gdupload/pkg/httputil"
)

type recordedRequest struct {
	req  httputil.Request
	body []byte
}

// fakeSender drains every request body and answers through handle.
type fakeSender struct {
	mu       sync.Mutex
	requests []recordedRequest
	handle   func(req httputil.Request, body []byte) *httputil.Response
}

func (f *fakeSender) Send(ctx context.Context, req httputil.Request) (*httputil.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{req: req, body: body})
	f.mu.Unlock()

	return f.handle(req, body), nil
}

func (f *fakeSender) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, r := range f.requests {
		if r.req.Path == path {
			n++
		}
	}
	return n
}

func (f *fakeSender) last(path string) (recordedRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].req.Path == path {
			return f.requests[i], true
		}
	}
	return recordedRequest{}, false
}

func respond(status int, body string) *httputil.Response {
	return &httputil.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       []byte(body),
	}
}
