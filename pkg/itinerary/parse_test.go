package itinerary_test

import (
	"bytes"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/wanderwise/pkg/itinerary"
)

const paris = `
Here is your plan.
Day 1: Arrival in Paris & Montmartre
- Arrive at CDG, take a taxi to Le Marais.
- Evening: dinner at a classic bistro.

Day 2: Iconic Landmarks
- Eiffel Tower

Day 3: Versailles & Departure
- Morning: Day trip to the Palace of Versailles.
`

var _ = Describe("Parse", func() {
	It("splits on day headings and drops the preamble", func() {
		sections := itinerary.Parse(paris)

		Expect(sections).To(HaveLen(3))
		Expect(sections[0].Title).To(Equal("Day 1: Arrival in Paris & Montmartre"))
		Expect(sections[0].Content).To(Equal("- Arrive at CDG, take a taxi to Le Marais.\n- Evening: dinner at a classic bistro."))
		Expect(sections[1].Content).To(Equal("- Eiffel Tower"))
		Expect(sections[2].Title).To(Equal("Day 3: Versailles & Departure"))
	})

	It("does not treat 'Day trip' inside content as a heading", func() {
		sections := itinerary.Parse(paris)
		Expect(sections[2].Content).To(ContainSubstring("Day trip to the Palace"))
	})

	It("returns the whole text as one section without headings", func() {
		sections := itinerary.Parse("Just wander around.")
		Expect(sections).To(Equal([]itinerary.Section{{Title: itinerary.DefaultTitle, Content: "Just wander around."}}))
	})

	It("keeps empty content for a trailing heading", func() {
		sections := itinerary.Parse("Day 1: Rest")
		Expect(sections).To(HaveLen(1))
		Expect(sections[0].Content).To(BeEmpty())
	})
})

var _ = Describe("Schedule JSON", func() {
	It("keeps the document order of days", func() {
		var plan itinerary.Plan
		err := json.Unmarshal([]byte(`{"destination":"goa","days":3,"source":"delhi","itinerary":{"Day 2":["b"],"Day 10":["c"],"Day 1":["a"]}}`), &plan)
		Expect(err).NotTo(HaveOccurred())

		labels := []string{}
		for _, d := range plan.Itinerary {
			labels = append(labels, d.Label)
		}
		Expect(labels).To(Equal([]string{"Day 2", "Day 10", "Day 1"}))

		out, err := json.Marshal(plan.Itinerary)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(Equal(`{"Day 2":["b"],"Day 10":["c"],"Day 1":["a"]}`))
	})

	It("rejects a non-object itinerary", func() {
		var plan itinerary.Plan
		err := json.Unmarshal([]byte(`{"itinerary":["a"]}`), &plan)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Format", func() {
	It("renders the plan as prose", func() {
		plan := &itinerary.Plan{
			Destination: "goa",
			Days:        2,
			Itinerary: itinerary.Schedule{
				{Label: "Day 1", Activities: []string{"Beach", "Seafood"}},
				{Label: "Day 2", Activities: []string{"Fort Aguada"}},
			},
		}

		Expect(itinerary.Format(plan)).To(Equal(
			"Trip to goa for 2 days.\n\nDay 1:\n- Beach\n- Seafood\n\nDay 2:\n- Fort Aguada\n\n",
		))
	})
})

var _ = Describe("NewRequest", func() {
	It("derives days and budget from the form values", func() {
		req := itinerary.NewRequest("bengaluru", "Goa", "5d", "Leisure, Adventure")
		Expect(req).To(Equal(itinerary.Request{Source: "bengaluru", Destination: "Goa", Days: 5, Budget: "leisure"}))
	})

	DescribeTable("ParseDays",
		func(in string, want int) {
			Expect(itinerary.ParseDays(in)).To(Equal(want))
		},
		Entry("suffix", "5d", 5),
		Entry("words", " 12 days", 12),
		Entry("empty", "", itinerary.DefaultDays),
		Entry("no number", "a week", itinerary.DefaultDays),
		Entry("zero", "0", itinerary.DefaultDays),
	)
})

var _ = Describe("ExportCSV", func() {
	It("writes one row per activity", func() {
		var buf bytes.Buffer
		Expect(itinerary.ExportCSV(&buf, itinerary.Parse(paris))).To(Succeed())

		Expect(buf.String()).To(HavePrefix("day,activity\n"))
		Expect(buf.String()).To(ContainSubstring("Day 2: Iconic Landmarks,Eiffel Tower\n"))
		Expect(buf.String()).To(ContainSubstring(`Day 1: Arrival in Paris & Montmartre,"Arrive at CDG, take a taxi to Le Marais."`))
	})

	It("writes only the header for an empty itinerary", func() {
		var buf bytes.Buffer
		Expect(itinerary.ExportCSV(&buf, itinerary.Parse("   "))).To(Succeed())
		Expect(buf.String()).To(Equal("day,activity\n"))
	})
})
