package transport

import (
	"net/http"
	"sync"
)

// AsyncFunc starts a fetch that completes later, possibly on another goroutine. It calls onSuccess when the
// body is available and done once the fetch is over, whether it succeeded or not.
type AsyncFunc func(url string, onSuccess SuccessFunc, done func())

type blocking struct {
	start AsyncFunc
}

// Blocking turns an asynchronous fetcher into a Transport. Fetch waits until the fetcher signals done or the
// request context ends, then runs the request's success callback on the calling goroutine.
func Blocking(start AsyncFunc) Transport {
	return &blocking{start: start}
}

func (b *blocking) Fetch(req *Request) {
	var (
		once     sync.Once
		finished = make(chan struct{})
		mu       sync.Mutex
		result   *Response
	)

	finish := func() {
		once.Do(func() { close(finished) })
	}

	onSuccess := func(body string, status int, res *Response) {
		mu.Lock()
		defer mu.Unlock()
		if result != nil {
			return
		}

		if res == nil {
			res = &Response{StatusCode: status, Header: http.Header{}, ResponseText: body}
		}
		res.ResponseText = body
		result = res
	}

	b.start(req.URL, onSuccess, finish)

	select {
	case <-finished:
	case <-req.context().Done():
	}

	mu.Lock()
	res := result
	mu.Unlock()

	if res == nil || req.OnSuccess == nil {
		return
	}

	req.OnSuccess(res.ResponseText, res.StatusCode, res)
}
