package memory

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Dan9191/ledger-service/internal/forecast"
	"github.com/Dan9191/ledger-service/internal/models"
)

var demoFrequencies = []forecast.Frequency{forecast.Weekly, forecast.Fortnightly, forecast.Monthly, forecast.Quarterly, forecast.Yearly}

// SeedDemo fills s with a reproducible set of businesses, ledgers and
// roughly four months of activity ending at now
func SeedDemo(s *Store, now time.Time) {
	rng := rand.New(rand.NewPCG(424242, 0))
	amount := func(lo, hi float64) float64 { return forecast.Round(lo + rng.Float64()*(hi-lo)) }
	past := func(days, fromHour, toHour int) time.Time {
		d := forecast.StartOfDay(now).AddDate(0, 0, -rng.IntN(days+1))
		d = d.Add(time.Duration(fromHour+rng.IntN(toHour-fromHour+1))*time.Hour + time.Duration(rng.IntN(60))*time.Minute)
		if d.After(now) {
			return now
		}
		return d
	}

	type site struct{ name, location string }
	businesses := []struct {
		name, typ string
		sites     []site
	}{
		{"Joes Flooring", "Flooring", []site{{"Joes Flooring Moonta", "Moonta"}, {"Joes Flooring Plympton", "Adelaide"}}},
		{"Joes Carpet Cleaning", "Cleaning", []site{{"Joes Carpet Cleaning Mile End", "Adelaide"}}},
		{"Joes Mowing", "Services", []site{{"Joes Mowing Pt Lincoln", "Port Lincoln"}}},
		{"Joes Consulting", "Services", []site{{"Joes Consulting Adelaide", "Adelaide"}}},
	}

	var revenue []models.Ledger
	var others []models.Ledger
	for _, b := range businesses {
		business := s.SeedBusiness(models.Business{Name: b.name, Type: b.typ})
		for _, st := range b.sites {
			entity := s.SeedEntity(models.Entity{BusinessID: business.ID, Name: st.name, Type: b.typ, Location: st.location})
			for _, typ := range []string{"revenue", "services", "payroll"} {
				l := s.SeedLedger(models.Ledger{
					EntityID:        entity.ID,
					Name:            fmt.Sprintf("%s %s", st.name, titleCase(typ)),
					Type:            typ,
					StartingBalance: float64(10000 + rng.IntN(15001)),
					CreatedAt:       now,
				})
				if typ == "revenue" {
					revenue = append(revenue, l)
				} else {
					others = append(others, l)
				}
				seedActivity(s, l, now, rng, amount, past)
			}
		}
	}

	for _, l := range revenue {
		for range 3 {
			to := others[rng.IntN(len(others))]
			on := past(120, 8, 18)
			a := amount(100, 2000)
			s.SeedTransaction(models.Transaction{LedgerID: l.ID, OccurredAt: on, Type: models.TypeDebit, Description: fmt.Sprintf("Transfer to Ledger #%d", to.ID), Amount: -a})
			s.SeedTransaction(models.Transaction{LedgerID: to.ID, FromLedgerID: &l.ID, OccurredAt: on, Type: models.TypeCredit, Description: fmt.Sprintf("Transfer from Ledger #%d", l.ID), Amount: a})
		}
	}
}

func seedActivity(s *Store, l models.Ledger, now time.Time, rng *rand.Rand, amount func(lo, hi float64) float64, past func(days, fromHour, toHour int) time.Time) {
	debit := func(on time.Time, a float64, desc string) {
		s.SeedTransaction(models.Transaction{LedgerID: l.ID, OccurredAt: on, Type: models.TypeDebit, Description: desc, Amount: -a})
	}
	credit := func(on time.Time, a float64, desc string) {
		s.SeedTransaction(models.Transaction{LedgerID: l.ID, OccurredAt: on, Type: models.TypeCredit, Description: desc, Amount: a})
	}

	switch l.Type {
	case "revenue":
		for range 150 + rng.IntN(141) {
			credit(past(120, 8, 18), amount(50, 2500), "Sale")
		}
		for range 2 + rng.IntN(5) {
			debit(past(120, 8, 18), amount(20, 500), "Refund")
		}
	case "services":
		supplies := []string{"Supplies", "Fuel", "Consumables", "Tooling", "Maintenance", "Subscription"}
		for range 30 + rng.IntN(31) {
			debit(past(120, 7, 17), amount(40, 1200), supplies[rng.IntN(len(supplies))])
		}
		services := []string{"Subscription", "Membership", "Hosting", "Software License", "Service Fee"}
		for range 5 {
			start := forecast.StartOfDay(past(120, 7, 17))
			freq := demoFrequencies[rng.IntN(len(demoFrequencies))]
			end := forecast.StartOfDay(now).AddDate(0, 1+rng.IntN(12), 0)
			next := forecast.AdvanceToOrEqual(start, freq, forecast.StartOfDay(now).AddDate(0, 0, 1))
			var paid []time.Time
			for on := range forecast.Occurrences(start, freq, start, next, nil) {
				if on.Before(next) {
					paid = append(paid, on)
				}
			}
			a := amount(20, 300)
			desc := "Recurring: " + services[rng.IntN(len(services))]
			rec := s.SeedRecurring(models.Recurring{
				LedgerID: l.ID, Type: models.TypeDebit, Description: desc, Amount: a, Frequency: string(freq),
				StartDate: start, EndDate: &end, LastPaymentDate: &paid[len(paid)-1], NextPaymentDate: &next, CreatedAt: start,
			})
			for _, on := range paid {
				s.SeedTransaction(models.Transaction{LedgerID: l.ID, RecurringID: &rec.ID, OccurredAt: on, Type: models.TypeDebit, Description: desc, Amount: -a})
			}
		}
		for range 1 + rng.IntN(3) {
			credit(past(120, 7, 17), amount(10, 200), "Adjustment")
		}
	case "payroll":
		start := forecast.StartOfDay(now).AddDate(0, 0, -98)
		for on := start; !on.After(now); on = forecast.Fortnightly.Step(on) {
			debit(on.Add(9*time.Hour+time.Duration(rng.IntN(60))*time.Minute), amount(1500, 8000), "Payroll")
		}
		if rng.IntN(2) == 1 {
			credit(past(60, 9, 16), amount(100, 500), "Payroll Adjustment")
		}
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
