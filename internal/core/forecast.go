package core

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// forecastIntervals maps each recurring frequency to the calendar step added
// to the representative invoice date. Adhoc has no entry: adhoc invoices are
// never forecast.
var forecastIntervals = map[Frequency]struct {
	months int
	years  int
}{
	FreqMonthly:   {months: 1},
	FreqQuarterly: {months: 3},
	FreqBiAnnual:  {months: 6},
	FreqTriAnnual: {months: 4},
	FreqAnnual:    {years: 1},
}

type forecastGroup struct {
	client   string
	contract string
	freq     Frequency
}

// BuildForecasts projects expected invoices from a snapshot of posted
// invoices. Invoices are grouped by (client, contract-or-none, frequency);
// the invoice with the latest invoice date represents its group and its
// amount/currency are copied, not recomputed. A forecast is emitted only when
// the projected date is already due (expectedDate <= today). Groups whose
// representative has an unparseable invoice date are skipped and reported,
// never fatal.
func BuildForecasts(invoices []*Invoice, today time.Time) (forecasts []ExpectedInvoice, skipped []string) {
	latest := make(map[forecastGroup]*Invoice)
	latestDate := make(map[forecastGroup]time.Time)
	var order []forecastGroup

	for _, inv := range invoices {
		if _, ok := forecastIntervals[inv.Frequency]; !ok {
			continue
		}
		g := forecastGroup{client: inv.Client, contract: inv.ContractOrNone(), freq: inv.Frequency}
		d, err := time.Parse(dateLayout, inv.InvoiceDate)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("invoice %s: bad invoice date %q", inv.InvoiceNumber, inv.InvoiceDate))
			continue
		}
		if _, ok := latest[g]; !ok {
			order = append(order, g)
			latest[g] = inv
			latestDate[g] = d
		} else if d.After(latestDate[g]) {
			latest[g] = inv
			latestDate[g] = d
		}
	}

	for _, g := range order {
		inv := latest[g]
		interval := forecastIntervals[g.freq]
		expected := latestDate[g].AddDate(interval.years, interval.months, 0)
		if expected.After(today) {
			continue
		}
		forecasts = append(forecasts, ExpectedInvoice{
			Client:            inv.Client,
			CustomerContract:  inv.CustomerContract,
			InvoiceType:       inv.InvoiceType,
			Frequency:         inv.Frequency,
			ExpectedAmount:    inv.AmountDue,
			Currency:          inv.Currency,
			ExpectedDate:      expected.Format(dateLayout),
			LastInvoiceNumber: inv.InvoiceNumber,
			LastInvoiceDate:   inv.InvoiceDate,
		})
	}
	return forecasts, skipped
}
