package spec

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Watch", func() {
	var (
		dir    string
		cancel context.CancelFunc
		done   chan error
		calls  int32
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "restspecs-watch")
		Expect(err).ShouldNot(HaveOccurred())

		logger := logrus.New()
		logger.SetOutput(io.Discard)

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		atomic.StoreInt32(&calls, 0)
		done = make(chan error, 1)

		go func() {
			done <- Watch(ctx, dir, 50*time.Millisecond, logger, func() {
				atomic.AddInt32(&calls, 1)
			})
		}()

		// Give the watcher a moment to register the directory.
		time.Sleep(100 * time.Millisecond)
	})

	AfterEach(func() {
		cancel()
		Eventually(done).Should(Receive(BeNil()))
		os.RemoveAll(dir)
	})

	It("notices a new spec file", func() {
		writeFile(dir, "new.spec.json", `{"name": "new", "url": "/new"}`)

		Eventually(func() int32 { return atomic.LoadInt32(&calls) }).Should(BeNumerically(">", 0))
	})

	It("notices files in directories created after it started", func() {
		Expect(os.Mkdir(filepath.Join(dir, "nested"), 0755)).To(Succeed())
		Eventually(func() int32 { return atomic.LoadInt32(&calls) }).Should(BeNumerically(">", 0))

		time.Sleep(100 * time.Millisecond)
		atomic.StoreInt32(&calls, 0)

		writeFile(dir, "nested/inner.spec.json", `{"name": "inner", "url": "/inner"}`)
		Eventually(func() int32 { return atomic.LoadInt32(&calls) }).Should(BeNumerically(">", 0))
	})

	It("reloads once for a burst of changes", func() {
		for _, name := range []string{"a.spec.json", "b.spec.json", "c.spec.json"} {
			writeFile(dir, name, `{"name": "burst", "url": "/burst"}`)
		}

		Eventually(func() int32 { return atomic.LoadInt32(&calls) }).Should(Equal(int32(1)))
		Consistently(func() int32 { return atomic.LoadInt32(&calls) }, 200*time.Millisecond).Should(Equal(int32(1)))
	})

	It("reports a directory that does not exist", func() {
		err := Watch(context.Background(), filepath.Join(dir, "missing"), 0, logrus.New(), func() {})
		Expect(err).Should(HaveOccurred())
	})
})
