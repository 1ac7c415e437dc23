package itinerary_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/papercomputeco/wanderwise/pkg/itinerary"
)

var _ = Describe("Client", func() {
	var (
		ctx      context.Context
		backend  *httptest.Server
		received itinerary.Request
		status   int
		payload  string
		calls    atomic.Int32
	)

	BeforeEach(func() {
		ctx = context.Background()
		status = http.StatusOK
		payload = `{"destination":"goa","days":2,"source":"delhi","itinerary":{"Day 1":["Beach"],"Day 2":["Fort"]}}`
		calls.Store(0)

		backend = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			calls.Add(1)
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(Equal("/itinerary"))
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())

			w.WriteHeader(status)
			w.Write([]byte(payload))
		}))
	})

	AfterEach(func() {
		backend.Close()
	})

	newClient := func() *itinerary.Client {
		return itinerary.NewClient(itinerary.ClientConfig{
			BaseURL:          backend.URL,
			Timeout:          time.Second,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
		}, zap.NewNop())
	}

	It("posts the request and decodes the plan", func() {
		req := itinerary.Request{Source: "delhi", Destination: "goa", Days: 2, Budget: "leisure"}

		plan, err := newClient().Generate(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(received).To(Equal(req))
		Expect(plan.Destination).To(Equal("goa"))
		Expect(plan.Itinerary).To(HaveLen(2))
	})

	It("returns a StatusError for non-2xx responses", func() {
		status = http.StatusInternalServerError
		payload = "boom"

		_, err := newClient().Generate(ctx, itinerary.Request{Destination: "goa", Days: 1})

		var statusErr *itinerary.StatusError
		Expect(errors.As(err, &statusErr)).To(BeTrue())
		Expect(statusErr.StatusCode).To(Equal(http.StatusInternalServerError))
		Expect(statusErr.Body).To(Equal("boom"))
	})

	DescribeTable("returns a PayloadError with the raw body for invalid plans",
		func(body string) {
			payload = body

			_, err := newClient().Generate(ctx, itinerary.Request{Destination: "goa", Days: 1})

			var payloadErr *itinerary.PayloadError
			Expect(errors.As(err, &payloadErr)).To(BeTrue())
			Expect(string(payloadErr.Raw)).To(Equal(body))
		},
		Entry("not JSON", `<html>`),
		Entry("missing destination", `{"days":1,"itinerary":{"Day 1":["a"]}}`),
		Entry("zero days", `{"destination":"goa","days":0,"itinerary":{"Day 1":["a"]}}`),
		Entry("empty itinerary", `{"destination":"goa","days":1,"itinerary":{}}`),
		Entry("empty day", `{"destination":"goa","days":1,"itinerary":{"Day 1":[]}}`),
	)

	It("opens the breaker after consecutive failures", func() {
		status = http.StatusBadGateway
		client := newClient()

		for i := 0; i < 2; i++ {
			_, err := client.Generate(ctx, itinerary.Request{Destination: "goa", Days: 1})
			Expect(err).To(HaveOccurred())
		}

		_, err := client.Generate(ctx, itinerary.Request{Destination: "goa", Days: 1})
		Expect(err).To(MatchError(gobreaker.ErrOpenState))
		Expect(calls.Load()).To(Equal(int32(2)))
	})

	It("does not count cancelled requests against the backend", func() {
		client := newClient()

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		for i := 0; i < 3; i++ {
			_, err := client.Generate(cancelled, itinerary.Request{Destination: "goa", Days: 2})
			Expect(err).To(MatchError(context.Canceled))
		}

		plan, err := client.Generate(ctx, itinerary.Request{Destination: "goa", Days: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(plan.Destination).To(Equal("goa"))
	})

	It("does not count rejected requests against the backend", func() {
		status = http.StatusBadRequest
		client := newClient()

		for i := 0; i < 3; i++ {
			_, err := client.Generate(ctx, itinerary.Request{Destination: "goa", Days: 2})
			var statusErr *itinerary.StatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
		}

		status = http.StatusOK
		_, err := client.Generate(ctx, itinerary.Request{Destination: "goa", Days: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(calls.Load()).To(Equal(int32(4)))
	})
})
