package scan

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Resolver target selection", func() {
	Describe("Default port handling", func() {
		It("should append the DNS port when missing", func() {
			Expect(withDefaultPort("192.0.2.53")).Should(Equal("192.0.2.53:53"))
			Expect(withDefaultPort("2001:db8::53")).Should(Equal("[2001:db8::53]:53"))
		})
		It("should keep an explicit port", func() {
			Expect(withDefaultPort("192.0.2.53:5353")).Should(Equal("192.0.2.53:5353"))
		})
	})

	Describe("Forwarder address", func() {
		When("a forwarder is configured", func() {
			It("should be used as the target", func() {
				target, err := forwarderAddress(Options{Forwarder: "192.0.2.53"})
				Expect(err).Should(Succeed())
				Expect(target).Should(Equal("192.0.2.53:53"))
			})
		})
		When("only a resolver config file is configured", func() {
			It("should pick the first nameserver entry", func() {
				path := filepath.Join(GinkgoT().TempDir(), "resolv.conf")
				content := "# local resolver setup\n" +
					"search example.com\n" +
					"nameserver 192.0.2.1\n" +
					"nameserver 192.0.2.2\n"
				Expect(os.WriteFile(path, []byte(content), 0o600)).Should(Succeed())

				target, err := forwarderAddress(Options{ResolverConfigFile: path})
				Expect(err).Should(Succeed())
				Expect(target).Should(Equal("192.0.2.1:53"))
			})
		})
		When("the resolver config file has no nameserver entries", func() {
			It("should fail", func() {
				path := filepath.Join(GinkgoT().TempDir(), "resolv.conf")
				Expect(os.WriteFile(path, []byte("search example.com\n"), 0o600)).Should(Succeed())

				_, err := forwarderAddress(Options{ResolverConfigFile: path})
				Expect(err).Should(HaveOccurred())
				Expect(err.Error()).Should(ContainSubstring("no nameserver entries"))
			})
		})
		When("the resolver config file does not exist", func() {
			It("should fail", func() {
				_, err := forwarderAddress(Options{ResolverConfigFile: "/nonexistent/resolv.conf"})
				Expect(err).Should(HaveOccurred())
			})
		})
	})
})
