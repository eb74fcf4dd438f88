package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/property"
	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Portfolio is the in-memory snapshot the calculators scan
type Portfolio struct {
	Properties  []property.Property
	Tenants     []property.Tenant
	Leases      []property.Lease
	Receipts    []property.Receipt
	Expenses    []property.Expense
	Maintenance []property.MaintenanceTicket
}

// OccupancyRate returns occupied/total*100, or 0 when there are no properties
func OccupancyRate(occupied, total int) decimal.Decimal {
	return valueobject.Ratio(decimal.NewFromInt(int64(occupied)), decimal.NewFromInt(int64(total)), decimal.Zero)
}

// CollectionRate returns paid/billed*100 over receipt amounts, or 100 when
// nothing was billed
func CollectionRate(receipts []property.Receipt) decimal.Decimal {
	billed, paid := decimal.Zero, decimal.Zero
	for _, r := range receipts {
		billed = billed.Add(r.Amount)
		if r.IsPaid() {
			paid = paid.Add(r.Amount)
		}
	}
	return valueobject.Ratio(paid, billed, hundred)
}

func monthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// sameMonth reports whether a falls in b's calendar month, read in b's location
func sameMonth(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// ComputeKPIMetrics derives the headline KPIs
func ComputeKPIMetrics(p Portfolio, now time.Time) KPIMetrics {
	m := EmptyKPIMetrics()
	m.TotalProperties = len(p.Properties)
	for i := range p.Properties {
		if p.Properties[i].IsOccupied() {
			m.OccupiedProperties++
		}
	}
	m.OccupancyRate = OccupancyRate(m.OccupiedProperties, m.TotalProperties)

	for i := range p.Tenants {
		if p.Tenants[i].Status == property.TenantStatusActive {
			m.TotalTenants++
		}
	}
	for i := range p.Leases {
		if p.Leases[i].IsActiveAt(now) {
			m.ActiveLeases++
		}
	}

	revenue, monthly, outstanding := decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range p.Receipts {
		if r.IsPaid() {
			revenue = revenue.Add(r.Amount)
			if sameMonth(r.Date, now) {
				monthly = monthly.Add(r.Amount)
			}
		} else {
			outstanding = outstanding.Add(r.Amount)
		}
	}
	expenses := decimal.Zero
	for _, e := range p.Expenses {
		expenses = expenses.Add(e.Amount)
	}

	m.TotalRevenue = valueobject.RoundMoney(revenue)
	m.MonthlyRevenue = valueobject.RoundMoney(monthly)
	m.OutstandingAmount = valueobject.RoundMoney(outstanding)
	m.TotalExpenses = valueobject.RoundMoney(expenses)
	m.NetIncome = valueobject.RoundMoney(revenue.Sub(expenses))
	m.CollectionRate = CollectionRate(p.Receipts)

	for i := range p.Maintenance {
		if p.Maintenance[i].Status.IsOpen() {
			m.OpenMaintenanceTickets++
		}
	}
	return m
}

// ComputeRevenueByMonth buckets paid receipts and expenses into the last
// months calendar months ending with the month of now, oldest first
func ComputeRevenueByMonth(receipts []property.Receipt, expenses []property.Expense, months int, now time.Time) []RevenueByMonth {
	if months <= 0 {
		return []RevenueByMonth{}
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)

	out := make([]RevenueByMonth, months)
	index := make(map[string]int, months)
	for i := range out {
		key := monthKey(first.AddDate(0, i, 0))
		out[i] = RevenueByMonth{Month: key, Revenue: decimal.Zero, Expenses: decimal.Zero}
		index[key] = i
	}

	for _, r := range receipts {
		if !r.IsPaid() {
			continue
		}
		if i, ok := index[monthKey(r.Date.In(now.Location()))]; ok {
			out[i].Revenue = out[i].Revenue.Add(r.Amount)
		}
	}
	for _, e := range expenses {
		if i, ok := index[monthKey(e.Date.In(now.Location()))]; ok {
			out[i].Expenses = out[i].Expenses.Add(e.Amount)
		}
	}
	for i := range out {
		out[i].Revenue = valueobject.RoundMoney(out[i].Revenue)
		out[i].Expenses = valueobject.RoundMoney(out[i].Expenses)
		out[i].NetIncome = out[i].Revenue.Sub(out[i].Expenses)
	}
	return out
}

// ComputePropertyPerformance ranks properties by net income, highest first
func ComputePropertyPerformance(p Portfolio) []PropertyPerformance {
	receiptsByProperty := make(map[uuid.UUID][]property.Receipt)
	for _, r := range p.Receipts {
		receiptsByProperty[r.PropertyID] = append(receiptsByProperty[r.PropertyID], r)
	}
	expensesByProperty := make(map[uuid.UUID]decimal.Decimal)
	for _, e := range p.Expenses {
		expensesByProperty[e.PropertyID] = expensesByProperty[e.PropertyID].Add(e.Amount)
	}
	ticketsByProperty := make(map[uuid.UUID]int)
	for _, t := range p.Maintenance {
		ticketsByProperty[t.PropertyID]++
	}

	out := make([]PropertyPerformance, 0, len(p.Properties))
	for _, prop := range p.Properties {
		revenue := decimal.Zero
		for _, r := range receiptsByProperty[prop.ID] {
			if r.IsPaid() {
				revenue = revenue.Add(r.Amount)
			}
		}
		expenses := expensesByProperty[prop.ID]
		out = append(out, PropertyPerformance{
			PropertyID:       prop.ID,
			PropertyName:     prop.Name,
			Status:           string(prop.Status),
			Revenue:          valueobject.RoundMoney(revenue),
			Expenses:         valueobject.RoundMoney(expenses),
			NetIncome:        valueobject.RoundMoney(revenue.Sub(expenses)),
			CollectionRate:   CollectionRate(receiptsByProperty[prop.ID]),
			MaintenanceCount: ticketsByProperty[prop.ID],
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NetIncome.GreaterThan(out[j].NetIncome)
	})
	return out
}

// ComputeMaintenanceStats summarises tickets
func ComputeMaintenanceStats(tickets []property.MaintenanceTicket) MaintenanceStats {
	s := EmptyMaintenanceStats()
	s.Total = len(tickets)

	var resolvedCount int64
	var resolvedHours float64
	for i := range tickets {
		t := &tickets[i]
		switch t.Status {
		case property.TicketStatusOpen:
			s.Open++
		case property.TicketStatusInProgress:
			s.InProgress++
		case property.TicketStatusResolved, property.TicketStatusClosed:
			s.Resolved++
		}
		s.ByPriority[string(t.Priority)]++
		if t.Cost != nil {
			s.TotalCost = s.TotalCost.Add(*t.Cost)
		}
		if d, ok := t.ResolutionTime(); ok {
			resolvedCount++
			resolvedHours += d.Hours()
		}
	}

	s.TotalCost = valueobject.RoundMoney(s.TotalCost)
	if resolvedCount > 0 {
		s.AverageResolutionDays = decimal.NewFromFloat(resolvedHours / 24).
			Div(decimal.NewFromInt(resolvedCount)).Round(1)
	}
	return s
}

// ComputeOccupancyTrend reports, for each of the last months calendar
// months, how many properties had a lease covering the month's last day
func ComputeOccupancyTrend(properties []property.Property, leases []property.Lease, months int, now time.Time) []OccupancyTrendPoint {
	if months <= 0 {
		return []OccupancyTrendPoint{}
	}
	total := len(properties)
	known := make(map[uuid.UUID]bool, total)
	for _, p := range properties {
		known[p.ID] = true
	}

	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)
	out := make([]OccupancyTrendPoint, 0, months)
	for i := 0; i < months; i++ {
		monthStart := first.AddDate(0, i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)
		if monthEnd.After(now) {
			monthEnd = now
		}

		occupied := make(map[uuid.UUID]bool)
		for _, l := range leases {
			if l.Status == property.LeaseStatusDraft || !known[l.PropertyID] {
				continue
			}
			if !monthEnd.Before(l.StartDate) && !monthEnd.After(l.EndDate) {
				occupied[l.PropertyID] = true
			}
		}
		out = append(out, OccupancyTrendPoint{
			Month:         monthKey(monthStart),
			Occupied:      len(occupied),
			Total:         total,
			OccupancyRate: OccupancyRate(len(occupied), total),
		})
	}
	return out
}

// ComputeRecentActivities merges receipts, tickets, leases and expenses into
// one feed, newest first, truncated to limit
func ComputeRecentActivities(p Portfolio, limit int) []RecentActivity {
	tenantNames := make(map[uuid.UUID]string, len(p.Tenants))
	for _, t := range p.Tenants {
		tenantNames[t.ID] = t.Name
	}
	propertyNames := make(map[uuid.UUID]string, len(p.Properties))
	for _, pr := range p.Properties {
		propertyNames[pr.ID] = pr.Name
	}

	out := make([]RecentActivity, 0, len(p.Receipts)+len(p.Maintenance)+len(p.Leases)+len(p.Expenses))
	for _, r := range p.Receipts {
		if !r.IsPaid() {
			continue
		}
		amount := r.Amount
		out = append(out, RecentActivity{
			Type:        ActivityPayment,
			Description: fmt.Sprintf("Payment received from %s", nameOr(tenantNames[r.TenantID], "tenant")),
			Date:        r.Date,
			Amount:      &amount,
			ReferenceID: r.ID,
		})
	}
	for _, t := range p.Maintenance {
		out = append(out, RecentActivity{
			Type:        ActivityMaintenance,
			Description: fmt.Sprintf("%s at %s", t.Title, nameOr(propertyNames[t.PropertyID], "property")),
			Date:        t.UpdatedAt,
			Amount:      t.Cost,
			ReferenceID: t.ID,
		})
	}
	for _, l := range p.Leases {
		rent := l.MonthlyRent
		out = append(out, RecentActivity{
			Type:        ActivityLease,
			Description: fmt.Sprintf("Lease signed for %s", nameOr(propertyNames[l.PropertyID], "property")),
			Date:        l.CreatedAt,
			Amount:      &rent,
			ReferenceID: l.ID,
		})
	}
	for _, e := range p.Expenses {
		amount := e.Amount
		out = append(out, RecentActivity{
			Type:        ActivityExpense,
			Description: nameOr(e.Description, e.Category),
			Date:        e.Date,
			Amount:      &amount,
			ReferenceID: e.ID,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
