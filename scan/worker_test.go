package scan

import (
	"errors"

	"github.com/dnsweep/dnsweep/storage"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Worker pool", func() {
	var store *storage.Store

	BeforeEach(func() {
		store, _ = newTestStore()
	})

	Describe("Starting the pool", func() {
		When("the resolver factory fails", func() {
			It("should abort before scanning", func() {
				parsers, err := ParsersFor([]string{"A"})
				Expect(err).Should(Succeed())

				pool := NewWorkerPool(2, 10, parsers, store, Options{Attempts: 1},
					func() (Resolver, error) {
						return nil, errors.New("no forwarder reachable")
					})

				err = pool.Start()
				Expect(err).Should(HaveOccurred())
				Expect(err.Error()).Should(ContainSubstring("can't create resolver for worker"))
			})
		})
		When("the pool starts", func() {
			It("should create one resolver per worker", func() {
				result, err := answerResult(true, "example.com. 300 IN A 192.0.2.1")
				Expect(err).Should(Succeed())

				created := 0
				parsers, err := ParsersFor([]string{"A"})
				Expect(err).Should(Succeed())

				pool := NewWorkerPool(3, 10, parsers, store, Options{Attempts: 1},
					func() (Resolver, error) {
						created++

						return newCountingResolver(result), nil
					})

				Expect(pool.Start()).Should(Succeed())
				pool.Drain()
				Expect(created).Should(BeNumerically("==", 3))
			})
		})
	})

	Describe("Run identity", func() {
		It("should assign every pool a unique run id", func() {
			parsers, err := ParsersFor([]string{"A"})
			Expect(err).Should(Succeed())

			factory := func() (Resolver, error) { return &resolverMock{}, nil }
			first := NewWorkerPool(1, 1, parsers, store, Options{Attempts: 1}, factory)
			second := NewWorkerPool(1, 1, parsers, store, Options{Attempts: 1}, factory)

			Expect(first.RunID()).ShouldNot(BeEmpty())
			Expect(first.RunID()).ShouldNot(Equal(second.RunID()))
		})
	})
})
