package bill

import (
	"context"
	"errors"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/billedapp/expense-portal/internal/dom"
)

var _ = Describe("ListPipeline", func() {
	var (
		doc      *dom.Document
		store    *mockStore
		routes   []string
		logger   *slog.Logger
		recorder *logRecorder
		pipeline *ListPipeline
	)

	nav := func(route string) {
		routes = append(routes, route)
	}

	BeforeEach(func() {
		doc = dom.NewDocument()
		store = newMockStore()
		store.service.bills = fixtureBills()
		routes = nil
		logger, recorder = newTestLogger()
		pipeline = NewListPipelineWithLogger(doc, nav, store, logger)
	})

	Describe("RetrieveBills", func() {
		var (
			bills []FormattedBill
			err   error
		)

		JustBeforeEach(func() {
			bills, err = pipeline.RetrieveBills(context.Background())
		})

		When("every record is well formed", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return one formatted bill per record", func() {
				Expect(bills).To(HaveLen(4))
			})

			It("should preserve the store order", func() {
				Expect(bills[0].Bill.ID).To(Equal("47qAXb6fIm2zOKkLzMro"))
				Expect(bills[3].Bill.ID).To(Equal("qcCK3SzECmaZAGRrHjaC"))
			})

			It("should format dates and statuses", func() {
				Expect(bills[0].Date).To(Equal("4 Avr. 04"))
				Expect(bills[0].Status).To(Equal("En attente"))
				Expect(bills[1].Status).To(Equal("Refusé"))
				Expect(bills[2].Status).To(Equal("Accepté"))
			})

			It("should log the length diagnostic", func() {
				entries := recorder.all()
				Expect(entries).To(HaveLen(1))
				Expect(entries[0].attr("length")).To(BeEquivalentTo(4))
			})
		})

		When("one record has an unparseable date", func() {
			BeforeEach(func() {
				bad := fixtureBills()
				bad[1].Date = "garbage-date"
				store.service.bills = bad
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should not drop the record", func() {
				Expect(bills).To(HaveLen(4))
			})

			It("should keep the raw date for that record only", func() {
				Expect(bills[1].Date).To(Equal("garbage-date"))
				Expect(bills[0].Date).To(Equal("4 Avr. 04"))
			})

			It("should log the formatting error before the length diagnostic", func() {
				entries := recorder.all()
				Expect(entries).To(HaveLen(2))
				Expect(entries[0].level).To(Equal(slog.LevelError))
				Expect(entries[1].attr("length")).To(BeEquivalentTo(4))
			})
		})

		When("the store is absent", func() {
			BeforeEach(func() {
				pipeline = NewListPipelineWithLogger(doc, nav, nil, logger)
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should resolve to an empty collection", func() {
				Expect(bills).To(BeEmpty())
			})
		})

		When("the store list call fails", func() {
			var setupErr error

			BeforeEach(func() {
				setupErr = errors.New("Erreur 500")
				store.service.listErr = setupErr
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(setupErr))
			})
		})

		When("called twice with an unchanged store", func() {
			It("yields structurally equal collections", func() {
				again, err2 := pipeline.RetrieveBills(context.Background())
				Expect(err2).NotTo(HaveOccurred())
				Expect(again).To(Equal(bills))
			})
		})
	})

	Describe("NavigateToNewBill", func() {
		It("should invoke the navigation callback with the new-bill route", func() {
			pipeline.NavigateToNewBill()
			Expect(routes).To(Equal([]string{RouteNewBill}))
		})
	})

	Describe("OpenReceiptPreview", func() {
		var (
			modal   *dom.Element
			trigger *dom.Element
		)

		BeforeEach(func() {
			modal = dom.NewElement()
			modal.SetWidth(500)
			doc.SetElement(TestIDModalFile, modal)

			trigger = dom.NewElement()
			trigger.SetAttr(AttrBillURL, "https://test.storage.tld/receipt.jpg")
		})

		When("the trigger carries the receipt URL attribute", func() {
			BeforeEach(func() {
				pipeline.OpenReceiptPreview(trigger)
			})

			It("should inject the image into the modal body", func() {
				Expect(modal.HTML()).To(ContainSubstring("https://test.storage.tld/receipt.jpg"))
			})

			It("should cap the image at 60% of the modal width", func() {
				Expect(modal.HTML()).To(ContainSubstring("width=300"))
			})

			It("should show the modal", func() {
				Expect(modal.HasClass("show")).To(BeTrue())
				Expect(modal.Style("display")).To(Equal("block"))
			})
		})

		When("the trigger carries a bill ID known to the preview table", func() {
			BeforeEach(func() {
				_, err := pipeline.RetrieveBills(context.Background())
				Expect(err).NotTo(HaveOccurred())

				trigger = dom.NewElement()
				trigger.SetAttr(AttrBillID, "47qAXb6fIm2zOKkLzMro")
				pipeline.OpenReceiptPreview(trigger)
			})

			It("should resolve the URL from the table", func() {
				Expect(modal.HTML()).To(ContainSubstring("47qAXb6fIm2zOKkLzMro.jpg"))
			})
		})

		When("the trigger has no URL", func() {
			BeforeEach(func() {
				trigger = dom.NewElement()
				pipeline.OpenReceiptPreview(trigger)
			})

			It("should leave the modal untouched", func() {
				Expect(modal.HTML()).To(BeEmpty())
				Expect(modal.HasClass("show")).To(BeFalse())
			})
		})

		When("the modal container is absent", func() {
			BeforeEach(func() {
				doc = dom.NewDocument()
				pipeline = NewListPipelineWithLogger(doc, nav, store, logger)
			})

			It("should be a no-op", func() {
				Expect(func() { pipeline.OpenReceiptPreview(trigger) }).NotTo(Panic())
			})
		})

		When("the trigger is nil", func() {
			It("should be a no-op", func() {
				Expect(func() { pipeline.OpenReceiptPreview(nil) }).NotTo(Panic())
			})
		})
	})
})
