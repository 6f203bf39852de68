// Package jobs implements background job processing for the Tablefolk API.
//
// The jobs package contains scheduled tasks that run independently of HTTP
// request handling.
//
// # Job Types
//
// Available background jobs:
//
//   - SessionReminder: Notifies rosters of sessions starting soon
//   - Cleanup: Removes old read notifications and expired refresh tokens
//
// # Lifecycle
//
// Each job runs its own ticker goroutine:
//
//	reminder := jobs.NewSessionReminder(sessionService, time.Minute, 30*time.Minute)
//	reminder.Start()
//	defer reminder.Stop()
//
// # Error Handling
//
// Jobs log errors but don't crash the application. A failed pass is simply
// retried on the next tick.
package jobs
