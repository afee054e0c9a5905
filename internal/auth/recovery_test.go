package auth

import (
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Recovery codes", func() {
	ginkgo.Describe("GenerateRecoveryCode", func() {
		ginkgo.It("produces five-digit codes", func() {
			for i := 0; i < 100; i++ {
				code, err := GenerateRecoveryCode()
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(ValidRecoveryCodeFormat(code)).To(gomega.BeTrue())
			}
		})
	})

	ginkgo.Describe("ValidRecoveryCodeFormat", func() {
		ginkgo.It("rejects codes of the wrong shape", func() {
			gomega.Expect(ValidRecoveryCodeFormat("1234")).To(gomega.BeFalse())
			gomega.Expect(ValidRecoveryCodeFormat("123456")).To(gomega.BeFalse())
			gomega.Expect(ValidRecoveryCodeFormat("12a45")).To(gomega.BeFalse())
			gomega.Expect(ValidRecoveryCodeFormat("")).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("CodeValid", func() {
		var issuedAt time.Time

		ginkgo.BeforeEach(func() {
			issuedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		})

		ginkgo.It("accepts a code inside the window", func() {
			gomega.Expect(CodeValid(issuedAt, issuedAt.Add(30*time.Second), time.Minute)).To(gomega.BeTrue())
		})

		ginkgo.It("rejects a code past the window", func() {
			gomega.Expect(CodeValid(issuedAt, issuedAt.Add(61*time.Second), time.Minute)).To(gomega.BeFalse())
		})

		ginkgo.It("rejects a code issued in the future", func() {
			gomega.Expect(CodeValid(issuedAt, issuedAt.Add(-time.Second), time.Minute)).To(gomega.BeFalse())
		})

		ginkgo.It("accepts exactly at the window edge", func() {
			gomega.Expect(CodeValid(issuedAt, issuedAt.Add(time.Minute), time.Minute)).To(gomega.BeTrue())
		})
	})
})
