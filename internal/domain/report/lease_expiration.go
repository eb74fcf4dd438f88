package report

import (
	"sort"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/property"
	"github.com/google/uuid"
)

// Risk band thresholds in days until expiration
const (
	CriticalExpirationDays = 30
	WarningExpirationDays  = 60
)

// ClassifyExpiration bands days until a lease ends:
// below zero expired, up to 30 critical, up to 60 warning, otherwise healthy
func ClassifyExpiration(daysUntil int) ExpirationRisk {
	switch {
	case daysUntil < 0:
		return ExpirationRiskExpired
	case daysUntil <= CriticalExpirationDays:
		return ExpirationRiskCritical
	case daysUntil <= WarningExpirationDays:
		return ExpirationRiskWarning
	default:
		return ExpirationRiskHealthy
	}
}

// ComputeLeaseExpirations lists active leases ending within horizonDays of
// now, including those already past their end date, soonest first
func ComputeLeaseExpirations(p Portfolio, horizonDays int, now time.Time) []LeaseExpiration {
	tenantNames := make(map[uuid.UUID]string, len(p.Tenants))
	for _, t := range p.Tenants {
		tenantNames[t.ID] = t.Name
	}
	propertyNames := make(map[uuid.UUID]string, len(p.Properties))
	for _, pr := range p.Properties {
		propertyNames[pr.ID] = pr.Name
	}

	out := make([]LeaseExpiration, 0)
	for i := range p.Leases {
		l := &p.Leases[i]
		if l.Status != property.LeaseStatusActive {
			continue
		}
		days := l.DaysUntilExpiration(now)
		if days > horizonDays {
			continue
		}
		out = append(out, LeaseExpiration{
			LeaseID:             l.ID,
			PropertyID:          l.PropertyID,
			PropertyName:        propertyNames[l.PropertyID],
			TenantID:            l.TenantID,
			TenantName:          tenantNames[l.TenantID],
			EndDate:             l.EndDate,
			MonthlyRent:         l.MonthlyRent,
			DaysUntilExpiration: days,
			Risk:                ClassifyExpiration(days),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysUntilExpiration < out[j].DaysUntilExpiration
	})
	return out
}
