package kpi

import "github.com/LuizZaim/SolarView-Demo/internal/models"

// MaxLedgerEntries caps the per-session history; oldest entries are evicted first.
const MaxLedgerEntries = 50

// LedgerEntry records one day's headline numbers.
type LedgerEntry struct {
	Date        string
	TotalEnergy float64
	PeakPower   float64
}

// Ledger is an append-ordered day -> KPI record scoped to one user session.
// It is not safe for concurrent use; a session is served by one request at a time.
type Ledger struct {
	entries []LedgerEntry
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Record inserts or overwrites the entry for date. Overwriting keeps the
// entry's position in the eviction queue. When a new insert exceeds the cap,
// the oldest entry is dropped.
func (l *Ledger) Record(date string, snap models.KpiSnapshot) {
	for i := range l.entries {
		if l.entries[i].Date == date {
			l.entries[i].TotalEnergy = snap.TotalEnergy
			l.entries[i].PeakPower = snap.PeakPower
			return
		}
	}

	l.entries = append(l.entries, LedgerEntry{
		Date:        date,
		TotalEnergy: snap.TotalEnergy,
		PeakPower:   snap.PeakPower,
	})
	if len(l.entries) > MaxLedgerEntries {
		l.entries = l.entries[len(l.entries)-MaxLedgerEntries:]
	}
}

// AverageExcluding returns the mean TotalEnergy over every entry except date,
// or 0 when no other entries exist.
func (l *Ledger) AverageExcluding(date string) float64 {
	sum := 0.0
	n := 0
	for _, e := range l.entries {
		if e.Date == date {
			continue
		}
		sum += e.TotalEnergy
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Len returns the number of recorded days.
func (l *Ledger) Len() int {
	return len(l.entries)
}
