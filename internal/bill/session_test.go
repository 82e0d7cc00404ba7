package bill

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltSession", func() {
	var (
		dbPath  string
		session *BoltSession
	)

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "session.db")
		var err error
		session, err = NewBoltSession(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if session != nil {
			session.Close()
		}
	})

	Describe("Get", func() {
		When("the record exists", func() {
			BeforeEach(func() {
				Expect(session.Set("user", `{"type":"Employee","email":"employee@test.tld"}`)).To(Succeed())
			})

			It("should return the stored value", func() {
				value, err := session.Get("user")
				Expect(err).NotTo(HaveOccurred())
				Expect(value).To(Equal(`{"type":"Employee","email":"employee@test.tld"}`))
			})
		})

		When("the record is absent", func() {
			It("should return an empty value", func() {
				value, err := session.Get("user")
				Expect(err).NotTo(HaveOccurred())
				Expect(value).To(BeEmpty())
			})
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			Expect(session.Set("jwt", "token")).To(Succeed())
		})

		It("should remove the record", func() {
			Expect(session.Delete("jwt")).To(Succeed())
			value, err := session.Get("jwt")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(BeEmpty())
		})
	})

	Describe("persistence across reopen", func() {
		It("should keep records after the store is closed and reopened", func() {
			Expect(session.Set("user", `{"type":"Admin","email":"admin@test.tld"}`)).To(Succeed())
			Expect(session.Close()).To(Succeed())

			reopened, err := NewBoltSession(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer reopened.Close()

			value, err := reopened.Get("user")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(ContainSubstring("admin@test.tld"))
			session = nil
		})
	})
})

var _ = Describe("CurrentUser", func() {
	var store *mockSession

	BeforeEach(func() {
		store = newMockSession()
	})

	When("a user record is present", func() {
		BeforeEach(func() {
			Expect(store.Set(SessionUserKey, `{"type":"Employee","email":"employee@test.tld"}`)).To(Succeed())
		})

		It("should decode the identity", func() {
			user, err := CurrentUser(store)
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Type).To(Equal("Employee"))
			Expect(user.Email).To(Equal("employee@test.tld"))
		})
	})

	When("no user record is present", func() {
		It("returns the error", func() {
			_, err := CurrentUser(store)
			Expect(err).To(MatchError(ContainSubstring("no user session")))
		})
	})

	When("the record is not valid JSON", func() {
		BeforeEach(func() {
			Expect(store.Set(SessionUserKey, "not-json")).To(Succeed())
		})

		It("returns the error", func() {
			_, err := CurrentUser(store)
			Expect(err).To(MatchError(ContainSubstring("decoding user session")))
		})
	})
})
