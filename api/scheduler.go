/*
scheduler.go - Automated period archive scheduler

PURPOSE:
  Periodically checks for PAID pay periods whose pay date has passed and
  moves them to CLOSED, so the books do not accumulate paid-but-open
  periods when nobody clicks the close button.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Detects PAID periods where the pay date is on or before today
  - Goes through the processor so the lifecycle rules still apply
  - Periods that cannot transition are logged and left alone

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewArchiveScheduler(store, processor)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: ClosePeriod endpoint (manual archive)
  - payroll/processor.go: ClosePeriod and the period lifecycle
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/payroll-engine/compliance"
	"github.com/warp/payroll-engine/payroll"
)

// ArchiveScheduler closes paid periods once their pay date has passed.
type ArchiveScheduler struct {
	Store         Store
	Processor     *payroll.Processor
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewArchiveScheduler creates a new scheduler.
func NewArchiveScheduler(store Store, processor *payroll.Processor) *ArchiveScheduler {
	return &ArchiveScheduler{
		Store:         store,
		Processor:     processor,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (as *ArchiveScheduler) Start() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if !as.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	as.ticker = time.NewTicker(as.CheckInterval)
	as.wg.Add(1)

	go as.run()

	log.Printf("[Scheduler] Started with check interval: %v", as.CheckInterval)
}

// Stop stops the scheduler.
func (as *ArchiveScheduler) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.ticker != nil {
		as.ticker.Stop()
		close(as.stop)
		as.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (as *ArchiveScheduler) run() {
	defer as.wg.Done()

	// Run immediately on start
	as.checkAndArchive()

	for {
		select {
		case <-as.ticker.C:
			as.checkAndArchive()
		case <-as.stop:
			return
		}
	}
}

func (as *ArchiveScheduler) checkAndArchive() {
	ctx := context.Background()
	today := compliance.DateOf(time.Now().UTC())

	log.Printf("[Scheduler] Checking for archivable periods at %s", today)

	paid := payroll.PeriodPaid
	periods, err := as.Store.ListPeriods(ctx, payroll.PeriodFilter{Status: &paid})
	if err != nil {
		log.Printf("[Scheduler] Error listing periods: %v", err)
		return
	}

	closedCount := 0
	skippedCount := 0

	for _, period := range periods {
		if today.Before(period.PayDate) {
			// Not payable-complete yet
			skippedCount++
			continue
		}

		if _, err := as.Processor.ClosePeriod(ctx, period.ID); err != nil {
			log.Printf("[Scheduler] Error closing period %s: %v", period.ID, err)
			continue
		}
		closedCount++
		log.Printf("[Scheduler] Closed period %s (%s, paid %s)", period.ID, period.Name, period.PayDate)
	}

	if closedCount > 0 || skippedCount > 0 {
		log.Printf("[Scheduler] Completed: %d closed, %d not yet due", closedCount, skippedCount)
	}
}

// RunNow triggers an immediate check (for testing/admin).
func (as *ArchiveScheduler) RunNow() {
	as.checkAndArchive()
}

// GetNextRunTime returns when the next scheduled check will occur.
func (as *ArchiveScheduler) GetNextRunTime() time.Time {
	return time.Now().Add(as.CheckInterval)
}
