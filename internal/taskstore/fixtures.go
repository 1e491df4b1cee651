package taskstore

import (
	"fmt"
	"time"

	"github.com/pdxmph/parastrom/internal/task"
	"github.com/pdxmph/parastrom/internal/timecode"
)

// Fixtures returns a realistic sample collection anchored at now: some
// tasks running, one already elapsed, one done and one carrying a raw
// epoch start time as foreign imports do.
func Fixtures(now time.Time) []task.Task {
	at := func(offset time.Duration) time.Time { return now.Add(offset) }

	tea := task.New("Steep tea", "home", task.PriorityLow, 4*time.Minute, "", at(-time.Minute))
	report := task.New("Draft quarterly report", "work", task.PriorityHigh, 2*time.Hour, "Outline first, numbers later", at(-90*time.Minute))
	laundry := task.New("Laundry cycle", "home", task.PriorityMedium, 45*time.Minute, "", at(-time.Hour))
	review := task.New("Review pull request", "work", task.PriorityMedium, 30*time.Minute, "", at(-20*time.Minute))
	review.Done = true

	bread := task.New("Proof bread dough", "kitchen", task.PriorityLow, 24*time.Hour, "Fridge, overnight", at(-3*time.Hour))
	bread.StartTime = timecode.FromMillis(at(-3 * time.Hour).UnixMilli())

	return []task.Task{tea, report, laundry, review, bread}
}

// SeedFixtures replaces the collection with Fixtures(now)
func SeedFixtures(s *Store, now time.Time) error {
	if err := s.Save(Fixtures(now)); err != nil {
		return fmt.Errorf("seeding fixtures: %w", err)
	}
	return nil
}
