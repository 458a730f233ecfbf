// Package transport fetches the text behind a representation-ref.
//
// A Transport is synchronous: it must invoke Request.OnSuccess, if at all, before Fetch returns. Transports
// that only know how to complete asynchronously are adapted with Blocking.
package transport

import (
	"context"
	"net/http"
)

type (
	// Transport fetches a URL and reports the body through the request's success callback.
	Transport interface {
		Fetch(req *Request)
	}

	// SuccessFunc receives the fetched body.
	SuccessFunc func(body string, status int, res *Response)

	// Request is a single fetch.
	Request struct {
		Context     context.Context
		URL         string
		Synchronous bool
		OnSuccess   SuccessFunc
	}

	// Response is the metadata handed to a success callback.
	Response struct {
		StatusCode   int
		Header       http.Header
		ResponseText string
	}

	// Func adapts a plain function to a Transport.
	Func func(req *Request)
)

// Fetch calls f(req).
func (f Func) Fetch(req *Request) {
	f(req)
}

func (r *Request) context() context.Context {
	if r.Context == nil {
		return context.Background()
	}

	return r.Context
}

func (r *Request) succeed(body string, status int, header http.Header) {
	if r.OnSuccess == nil {
		return
	}

	r.OnSuccess(body, status, &Response{StatusCode: status, Header: header, ResponseText: body})
}
