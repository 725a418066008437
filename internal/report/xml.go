// Package report renders forecast reports for export.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Dan9191/ledger-service/internal/models"
	"github.com/beevik/etree"
)

// ContentTypeXML is served with ForecastXML output
const ContentTypeXML = "application/xml; charset=utf-8"

// ForecastDocument builds the XML document of a forecast report
func ForecastDocument(r *models.ForecastReport) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Forecast")
	root.CreateAttr("asAt", r.AsAt)
	root.CreateAttr("until", r.Until)
	root.CreateAttr("lookbackMonths", strconv.Itoa(r.LookbackMonths))

	for _, lf := range r.Ledgers {
		ledger := root.CreateElement("Ledger")
		ledger.CreateAttr("id", strconv.FormatInt(lf.LedgerID, 10))
		ledger.CreateElement("Name").SetText(lf.LedgerName)
		ledger.CreateElement("OpeningBalance").SetText(amount(lf.OpeningBalance))
		ledger.CreateElement("ProjectedChange").SetText(amount(lf.ProjectedChange))
		ledger.CreateElement("ProjectedBalance").SetText(amount(lf.ProjectedBalance))
		if len(lf.Monthly) == 0 {
			continue
		}
		monthly := ledger.CreateElement("Monthly")
		for _, m := range lf.Monthly {
			month := monthly.CreateElement("Month")
			month.CreateAttr("period", m.Month)
			month.CreateElement("Recurring").SetText(amount(m.RecurringTotal))
			month.CreateElement("Historical").SetText(amount(m.HistoricalTotal))
			month.CreateElement("Change").SetText(amount(m.ProjectedChange))
		}
	}
	doc.Indent(2)
	return doc
}

// WriteForecastXML writes the XML rendering of r to w
func WriteForecastXML(w io.Writer, r *models.ForecastReport) error {
	if _, err := ForecastDocument(r).WriteTo(w); err != nil {
		return fmt.Errorf("failed to write forecast xml: %w", err)
	}
	return nil
}

func amount(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
