package property

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)

func newLease(t *testing.T, start, end time.Time) *Lease {
	t.Helper()
	l, err := NewLease(uuid.New(), uuid.New(), uuid.New(), start, end, decimal.NewFromInt(900), refNow)
	require.NoError(t, err)
	return l
}

func TestNewLease(t *testing.T) {
	_, err := NewLease(uuid.New(), uuid.New(), uuid.New(), refNow, refNow, decimal.NewFromInt(900), refNow)
	assert.Error(t, err)

	_, err = NewLease(uuid.New(), uuid.New(), uuid.New(), refNow, refNow.AddDate(1, 0, 0), decimal.Zero, refNow)
	assert.Error(t, err)
}

func TestLease_IsActiveAt(t *testing.T) {
	l := newLease(t, refNow.AddDate(0, -1, 0), refNow.AddDate(0, 11, 0))
	assert.True(t, l.IsActiveAt(refNow))
	assert.False(t, l.IsActiveAt(refNow.AddDate(1, 0, 0)))
	assert.False(t, l.IsActiveAt(refNow.AddDate(0, -2, 0)))

	l.Status = LeaseStatusTerminated
	assert.False(t, l.IsActiveAt(refNow))
}

func TestLease_DaysUntilExpiration(t *testing.T) {
	tests := []struct {
		offset int
		want   int
	}{
		{-1, -1},
		{0, 0},
		{30, 30},
		{31, 31},
		{365, 365},
	}
	for _, tt := range tests {
		end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, tt.offset)
		l := newLease(t, refNow.AddDate(-1, 0, 0), end)
		assert.Equal(t, tt.want, l.DaysUntilExpiration(refNow), "offset %d", tt.offset)
	}
}

func TestNewTenant(t *testing.T) {
	tn, err := NewTenant(uuid.New(), " Ana Silva ", "ana@example.pt", "123456789", refNow)
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", tn.Name)
	assert.Equal(t, TenantStatusActive, tn.Status)

	_, err = NewTenant(uuid.New(), "Ana", "", "123456780", refNow)
	assert.Error(t, err)

	anon, err := NewTenant(uuid.New(), "Sem NIF", "", "", refNow)
	require.NoError(t, err)
	assert.Equal(t, "999999990", anon.TaxIDOrFinalConsumer())
}

func TestMaintenanceTicket_Resolve(t *testing.T) {
	tk, err := NewMaintenanceTicket(uuid.New(), uuid.New(), "Leaking tap", "", refNow)
	require.NoError(t, err)
	assert.Equal(t, TicketPriorityMedium, tk.Priority)

	cost := decimal.NewFromInt(80)
	require.NoError(t, tk.Resolve(&cost, refNow.Add(48*time.Hour)))
	d, ok := tk.ResolutionTime()
	assert.True(t, ok)
	assert.Equal(t, 48*time.Hour, d)

	assert.Error(t, tk.Resolve(nil, refNow))
}
