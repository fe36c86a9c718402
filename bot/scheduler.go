package bot

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scheduler manages all scheduled tasks.
type Scheduler struct {
	bot  *Bot
	done chan struct{}
	wg   sync.WaitGroup

	resetTicker *time.Ticker
}

// NewScheduler creates a new scheduler.
func NewScheduler(bot *Bot) *Scheduler {
	return &Scheduler{
		bot:  bot,
		done: make(chan struct{}),
	}
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.startResetLoop()
}

// Stop terminates all scheduled tasks gracefully.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

func (s *Scheduler) startResetLoop() {
	defer s.wg.Done()

	// Catch up on boundaries crossed while the bot was down.
	s.runResetTick()

	interval := time.Duration(s.bot.GetConfig().Settings.ResetTickSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	s.resetTicker = time.NewTicker(interval)
	defer s.resetTicker.Stop()

	for {
		select {
		case <-s.resetTicker.C:
			s.runResetTick()
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) runResetTick() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	s.bot.Reset.TickAll(ctx)
}
