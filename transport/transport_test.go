package transport

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/onsi/gomega/ghttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type fetched struct {
	called bool
	body   string
	status int
	res    *Response
}

func fetch(t Transport, ctx context.Context, url string) fetched {
	var f fetched
	t.Fetch(&Request{
		Context:     ctx,
		URL:         url,
		Synchronous: true,
		OnSuccess: func(body string, status int, res *Response) {
			f = fetched{called: true, body: body, status: status, res: res}
		},
	})
	return f
}

var _ = Describe("Transport", func() {
	var logger *logrus.Logger

	BeforeEach(func() {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	})

	Context("HTTP", func() {
		var server *ghttp.Server

		BeforeEach(func() {
			server = ghttp.NewServer()
		})

		AfterEach(func() {
			server.Close()
		})

		It("reports the body of a successful response", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodGet, "/line/package/stuff/responseContent.xml"),
				ghttp.RespondWith(http.StatusOK, "<text>pizza pie</text>", http.Header{"Content-Type": {"application/xml"}}),
			))

			t, err := NewHTTP(WithHTTPLogger(logger))
			Expect(err).ShouldNot(HaveOccurred())

			f := fetch(t, context.Background(), server.URL()+"/line/package/stuff/responseContent.xml")
			Expect(f.called).To(BeTrue())
			Expect(f.body).To(Equal("<text>pizza pie</text>"))
			Expect(f.status).To(Equal(http.StatusOK))
			Expect(f.res.ResponseText).To(Equal("<text>pizza pie</text>"))
			Expect(f.res.Header.Get("Content-Type")).To(Equal("application/xml"))
		})

		It("resolves relative references against the base url", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodGet, "/fixtures/a.json"),
				ghttp.RespondWith(http.StatusOK, `{"a":"b"}`),
			))

			t, err := NewHTTP(WithBaseURL(server.URL()), WithClient(&http.Client{Timeout: time.Second}), WithHTTPLogger(logger))
			Expect(err).ShouldNot(HaveOccurred())

			f := fetch(t, context.Background(), "/fixtures/a.json")
			Expect(f.called).To(BeTrue())
			Expect(f.body).To(Equal(`{"a":"b"}`))
		})

		It("does not report unsuccessful responses", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusNotFound, "nope"))

			t, err := NewHTTP(WithHTTPLogger(logger))
			Expect(err).ShouldNot(HaveOccurred())

			Expect(fetch(t, context.Background(), server.URL()+"/missing").called).To(BeFalse())
		})

		It("does not report unreachable servers", func() {
			t, err := NewHTTP(WithHTTPLogger(logger))
			Expect(err).ShouldNot(HaveOccurred())

			url := server.URL()
			server.Close()

			Expect(fetch(t, context.Background(), url+"/gone").called).To(BeFalse())
		})

		It("fetches urls as given by default", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodGet, "/plain.txt"),
				ghttp.RespondWith(http.StatusOK, "plain"),
			))

			f := fetch(DefaultHTTP(logger), context.Background(), server.URL()+"/plain.txt")
			Expect(f.called).To(BeTrue())
			Expect(f.body).To(Equal("plain"))
		})

		It("rejects a bad base url", func() {
			_, err := NewHTTP(WithBaseURL("http://[::1"))
			Expect(err).Should(HaveOccurred())
		})
	})

	Context("File", func() {
		It("reads references from the filesystem", func() {
			fs := afero.NewMemMapFs()
			Expect(afero.WriteFile(fs, "/line/package/stuff/requestContent.json", []byte("{'columns':[]}"), 0644)).To(Succeed())

			f := fetch(NewFile(fs, logger), context.Background(), "/line/package/stuff/requestContent.json?v=2")
			Expect(f.called).To(BeTrue())
			Expect(f.body).To(Equal("{'columns':[]}"))
			Expect(f.status).To(Equal(http.StatusOK))
		})

		It("does not report missing files", func() {
			f := fetch(NewFile(afero.NewMemMapFs(), logger), context.Background(), "/nothing/here.xml")
			Expect(f.called).To(BeFalse())
		})
	})

	Context("Blocking", func() {
		It("waits for an asynchronous fetch to finish", func() {
			t := Blocking(func(url string, onSuccess SuccessFunc, done func()) {
				go func() {
					time.Sleep(20 * time.Millisecond)
					onSuccess("async "+url, http.StatusOK, nil)
					done()
				}()
			})

			f := fetch(t, context.Background(), "/later")
			Expect(f.called).To(BeTrue())
			Expect(f.body).To(Equal("async /later"))
			Expect(f.res.StatusCode).To(Equal(http.StatusOK))
		})

		It("reports nothing when the fetch finishes without a body", func() {
			t := Blocking(func(url string, onSuccess SuccessFunc, done func()) {
				go done()
			})

			Expect(fetch(t, context.Background(), "/failed").called).To(BeFalse())
		})

		It("stops waiting when the context ends", func() {
			t := Blocking(func(url string, onSuccess SuccessFunc, done func()) {})

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()

			Expect(fetch(t, ctx, "/never").called).To(BeFalse())
		})

		It("accepts fetchers that complete before returning", func() {
			t := Blocking(func(url string, onSuccess SuccessFunc, done func()) {
				onSuccess("now", http.StatusOK, nil)
				done()
				done()
			})

			Expect(fetch(t, context.Background(), "/now").body).To(Equal("now"))
		})
	})

	Context("Func", func() {
		It("calls the function", func() {
			var seen string
			t := Func(func(req *Request) { seen = req.URL })

			fetch(t, context.Background(), "/func")
			Expect(seen).To(Equal("/func"))
		})
	})
})
