package storage

import (
	"time"

	"gorm.io/driver/sqlite"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Store", func() {
	var store *Store

	BeforeEach(func() {
		var err error
		store, err = NewStore(sqlite.Open("file::memory:"))
		Expect(err).Should(Succeed())
	})

	Describe("Opening a database store", func() {
		When("an unknown database type is configured", func() {
			It("should fail", func() {
				_, err := NewDatabaseStore("invalid", "target")
				Expect(err).Should(HaveOccurred())
				Expect(err.Error()).Should(ContainSubstring("incorrect database type provided"))
			})
		})
		When("the store is opened", func() {
			It("should have migrated all row tables", func() {
				for _, table := range []string{"address_rr", "dnskey_rr", "mx_rr", "rrsig_rr", "denial_rr"} {
					Expect(store.db.Migrator().HasTable(table)).Should(BeTrue(), table)
				}
			})
		})
	})

	Describe("Inserting rows", func() {
		When("an address row is inserted", func() {
			It("should be persisted", func() {
				writer := store.Writer()
				err := writer.Insert(&AddressRecord{
					RunID:         "run-1",
					State:         "secure",
					Domain:        "example.com",
					EffectiveTLDP: "example.com",
					TTL:           300,
					Address:       "192.0.2.1",
				})
				Expect(err).Should(Succeed())

				var count int64
				store.db.Find(&AddressRecord{}).Count(&count)
				Expect(count).Should(BeNumerically("==", 1))
			})
		})
		When("a key row with the exponent sentinel is inserted", func() {
			It("should keep the raw key blob and the -1 exponent", func() {
				exponent := int64(-1)
				err := store.Writer().Insert(&KeyRecord{
					RunID:       "run-1",
					State:       "secure",
					Domain:      "example.com",
					Flags:       257,
					Protocol:    3,
					Algorithm:   8,
					RSAExponent: &exponent,
					OtherKey:    []byte{0x00, 0x02, 0x00},
				})
				Expect(err).Should(Succeed())

				var row KeyRecord
				Expect(store.db.First(&row).Error).Should(Succeed())
				Expect(*row.RSAExponent).Should(BeNumerically("==", -1))
				Expect(row.OtherKey).Should(Equal([]byte{0x00, 0x02, 0x00}))
				Expect(row.RSAModulus).Should(BeEmpty())
			})
		})
		When("a signature row is inserted", func() {
			It("should be persisted with its validity interval", func() {
				inception := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
				err := store.Writer().Insert(&SignatureRecord{
					RunID:         "run-1",
					Domain:        "example.com",
					RRType:        "DNSKEY",
					Algorithm:     8,
					Labels:        2,
					OriginalTTL:   3600,
					SigInception:  inception,
					SigExpiration: inception.AddDate(0, 1, 0),
					KeyTag:        20326,
					SignerName:    "example.com",
					Signature:     []byte("sig"),
				})
				Expect(err).Should(Succeed())

				var row SignatureRecord
				Expect(store.db.First(&row).Error).Should(Succeed())
				Expect(row.SigExpiration).Should(BeTemporally(">", row.SigInception))
			})
		})
		When("multiple writers of the same store insert rows", func() {
			It("should persist the rows of all writers", func() {
				first := store.Writer()
				second := store.Writer()

				Expect(first.Insert(&MXRecord{RunID: "run-1", Domain: "a.com", Exchange: "mx.a.com"})).Should(Succeed())
				Expect(second.Insert(&MXRecord{RunID: "run-1", Domain: "b.com", Exchange: "mx.b.com"})).Should(Succeed())

				var count int64
				store.db.Find(&MXRecord{}).Count(&count)
				Expect(count).Should(BeNumerically("==", 2))
			})
		})
	})
})
