package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/tablefolk/api/internal/service"
)

// Cleanup removes stale data on a slow cadence:
// - Read notifications older than the retention period
// - Expired refresh tokens
type Cleanup struct {
	notificationService *service.NotificationService
	tokenService        *service.TokenService
	interval            time.Duration
	retention           time.Duration
	stopCh              chan struct{}
	wg                  sync.WaitGroup
	running             bool
	mu                  sync.Mutex
}

// NewCleanup creates a new cleanup job
func NewCleanup(notificationService *service.NotificationService, tokenService *service.TokenService, interval, retention time.Duration) *Cleanup {
	if interval == 0 {
		interval = 24 * time.Hour // Default daily
	}
	if retention == 0 {
		retention = 30 * 24 * time.Hour // Default keep read notifications 30 days
	}
	return &Cleanup{
		notificationService: notificationService,
		tokenService:        tokenService,
		interval:            interval,
		retention:           retention,
		stopCh:              make(chan struct{}),
	}
}

// Start begins the cleanup job
func (j *Cleanup) Start() {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return
	}
	j.running = true
	j.mu.Unlock()

	j.wg.Add(1)
	go j.run()
	log.Printf("Cleanup job started (interval: %v, retention: %v)", j.interval, j.retention)
}

// Stop gracefully stops the cleanup job
func (j *Cleanup) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	j.mu.Unlock()

	close(j.stopCh)
	j.wg.Wait()
	log.Println("Cleanup job stopped")
}

// run is the main loop
func (j *Cleanup) run() {
	defer j.wg.Done()

	// First pass shortly after startup
	time.Sleep(30 * time.Second)
	j.cleanup()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.cleanup()
		case <-j.stopCh:
			return
		}
	}
}

// cleanup performs one cleanup pass
func (j *Cleanup) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := j.notificationService.CleanupRead(ctx, j.retention); err != nil {
		log.Printf("Error cleaning up notifications: %v", err)
	}
	if err := j.tokenService.CleanupExpired(ctx); err != nil {
		log.Printf("Error cleaning up expired tokens: %v", err)
	}
}

// RunOnce runs the cleanup once (for testing or manual trigger)
func (j *Cleanup) RunOnce(ctx context.Context) error {
	if err := j.notificationService.CleanupRead(ctx, j.retention); err != nil {
		return err
	}
	return j.tokenService.CleanupExpired(ctx)
}

// IsRunning returns whether the job is running
func (j *Cleanup) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}
