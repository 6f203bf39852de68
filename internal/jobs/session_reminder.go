package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/tablefolk/api/internal/service"
)

// SessionReminder notifies rosters of sessions starting soon. Each session
// is reminded once; the service marks it so restarts don't repeat it.
type SessionReminder struct {
	sessionService *service.SessionService
	interval       time.Duration
	window         time.Duration
	stopCh         chan struct{}
	wg             sync.WaitGroup
	running        bool
	mu             sync.Mutex
}

// NewSessionReminder creates a new session reminder job
func NewSessionReminder(sessionService *service.SessionService, interval, window time.Duration) *SessionReminder {
	if interval == 0 {
		interval = 1 * time.Minute // Default check every minute
	}
	if window == 0 {
		window = 30 * time.Minute // Default reminder lead time
	}
	return &SessionReminder{
		sessionService: sessionService,
		interval:       interval,
		window:         window,
		stopCh:         make(chan struct{}),
	}
}

// Start begins the session reminder job
func (j *SessionReminder) Start() {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return
	}
	j.running = true
	j.mu.Unlock()

	j.wg.Add(1)
	go j.run()
	log.Printf("Session reminder started (interval: %v, window: %v)", j.interval, j.window)
}

// Stop gracefully stops the session reminder job
func (j *SessionReminder) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	j.mu.Unlock()

	close(j.stopCh)
	j.wg.Wait()
	log.Println("Session reminder stopped")
}

// run is the main loop
func (j *SessionReminder) run() {
	defer j.wg.Done()

	// Run immediately on start (but with a short delay to let services initialize)
	time.Sleep(5 * time.Second)
	j.remind()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.remind()
		case <-j.stopCh:
			return
		}
	}
}

// remind sends reminders for sessions starting within the window
func (j *SessionReminder) remind() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	count, err := j.sessionService.RemindUpcoming(ctx, j.window)
	if err != nil {
		log.Printf("Error sending session reminders: %v", err)
		return
	}
	if count > 0 {
		log.Printf("Sent reminders for %d upcoming sessions", count)
	}
}

// RunOnce runs the reminder pass once (for testing or manual trigger)
func (j *SessionReminder) RunOnce(ctx context.Context) (int, error) {
	return j.sessionService.RemindUpcoming(ctx, j.window)
}

// IsRunning returns whether the job is running
func (j *SessionReminder) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}
