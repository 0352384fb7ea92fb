package scan

import (
	"os"
	"path/filepath"

	"github.com/miekg/dns"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const rootAnchorRR = ". 172800 IN DNSKEY 257 3 8 " +
	"AwEAAaz/tAm8yTn4Mfeh5eyI96WSVexTBAvkMgJzkKTOiW1vkIbzxeF3+/4RgWOq7HrxRixHlFlExOLAJr5emLvN7SWXgnLh4+B5xQlNVz8Og8kvArMtNROxVQuCaSnIDdD5LKyWbRd2n9WGe2R8PzgCmr3EgVLrjyBxWezF0jLHwVN8efS3rCj/EWgvIWgb9tarpVUDK/b58Da+sqqls3eNbuv7pr+eoZG+SrDK6nWeL3c6H5Apxz7LjVc1uTIdsIXxuOLYA4/ilBmSVIzuDWfdRUfhHdY6+cn8HFRm+2hM8AnXGXws9555KrUB5qihylGa8subX2Nn6UwNR1AkUTV74bU="

func writeAnchorFile(content string) string {
	path := filepath.Join(GinkgoT().TempDir(), "trust-anchor")
	Expect(os.WriteFile(path, []byte(content), 0o600)).Should(Succeed())

	return path
}

var _ = Describe("Trust anchor store", func() {
	Describe("Loading the anchor file", func() {
		When("the file contains a DNSKEY with comments and blank lines", func() {
			It("should load the anchor for the zone", func() {
				path := writeAnchorFile("; root trust anchor\n\n" + rootAnchorRR + "\n")

				store, err := NewTrustAnchorStore(path)
				Expect(err).Should(Succeed())
				Expect(store.HasTrustAnchor(".")).Should(BeTrue())
				Expect(store.HasTrustAnchor("example.com.")).Should(BeFalse())
			})
		})
		When("the file contains no DNSKEY records", func() {
			It("should fail", func() {
				path := writeAnchorFile("; just a comment\n")

				_, err := NewTrustAnchorStore(path)
				Expect(err).Should(HaveOccurred())
				Expect(err.Error()).Should(ContainSubstring("no DNSKEY trust anchors"))
			})
		})
		When("the file does not exist", func() {
			It("should fail", func() {
				_, err := NewTrustAnchorStore("/nonexistent/trust-anchor")
				Expect(err).Should(HaveOccurred())
			})
		})
		When("a line is not parseable as a resource record", func() {
			It("should fail", func() {
				path := writeAnchorFile("this is not a DNSKEY\n")

				_, err := NewTrustAnchorStore(path)
				Expect(err).Should(HaveOccurred())
			})
		})
	})

	Describe("Matching DNSKEY answers", func() {
		var store *TrustAnchorStore

		BeforeEach(func() {
			var err error
			store, err = NewTrustAnchorStore(writeAnchorFile(rootAnchorRR + "\n"))
			Expect(err).Should(Succeed())
		})

		When("the answer carries the anchored key", func() {
			It("should match", func() {
				rr, err := dns.NewRR(rootAnchorRR)
				Expect(err).Should(Succeed())

				Expect(store.Match(".", []*dns.DNSKEY{rr.(*dns.DNSKEY)})).Should(BeTrue())
			})
		})
		When("the answer carries a different key", func() {
			It("should not match", func() {
				rr, err := dns.NewRR(rootAnchorRR)
				Expect(err).Should(Succeed())

				other := rr.(*dns.DNSKEY)
				other.Flags = 256

				Expect(store.Match(".", []*dns.DNSKEY{other})).Should(BeFalse())
			})
		})
		When("the zone has no anchor", func() {
			It("should not match", func() {
				rr, err := dns.NewRR(rootAnchorRR)
				Expect(err).Should(Succeed())

				Expect(store.Match("example.com.", []*dns.DNSKEY{rr.(*dns.DNSKEY)})).Should(BeFalse())
			})
		})
	})
})
