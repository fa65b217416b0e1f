package service

import (
	"sort"
	"sync"

	"github.com/repairdesk/backend/internal/models"
)

// PriorityAuditLog is an append-only, process-lifetime record of scoring
// decisions. It is safe for concurrent use and never evicts entries.
type PriorityAuditLog struct {
	mu      sync.RWMutex
	entries []models.PriorityLogEntry
}

func NewPriorityAuditLog() *PriorityAuditLog {
	return &PriorityAuditLog{entries: make([]models.PriorityLogEntry, 0, 128)}
}

func (l *PriorityAuditLog) Record(entry models.PriorityLogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// ForJob returns the entries for one job, newest first.
func (l *PriorityAuditLog) ForJob(jobID string) []models.PriorityLogEntry {
	l.mu.RLock()
	out := []models.PriorityLogEntry{}
	for _, e := range l.entries {
		if e.RepairJobID == jobID {
			out = append(out, e)
		}
	}
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func (l *PriorityAuditLog) All() []models.PriorityLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.PriorityLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
