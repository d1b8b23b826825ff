package recurring

import (
	"time"

	"github.com/rs/zerolog"
)

// AdvanceJob moves every due rule's next run forward by its
// frequency, catching up past-due rules to the first date after
// today. Runs across all spaces.
type AdvanceJob struct {
	repo *Repository
	log  zerolog.Logger
}

// NewAdvanceJob creates the rule advancement job
func NewAdvanceJob(repo *Repository, log zerolog.Logger) *AdvanceJob {
	return &AdvanceJob{
		repo: repo,
		log:  log.With().Str("job", "recurring-advance").Logger(),
	}
}

// Name implements scheduler.Job
func (j *AdvanceJob) Name() string {
	return "recurring-advance"
}

// Run implements scheduler.Job
func (j *AdvanceJob) Run() error {
	today := time.Now().UTC().Format("2006-01-02")

	due, err := j.repo.ListDue(today)
	if err != nil {
		return err
	}

	advanced := 0
	for _, rule := range due {
		next := NextAfter(rule.NextRun, rule.Frequency, today)
		if err := j.repo.SetNextRun(rule.SpaceID, rule.ID, next); err != nil {
			j.log.Error().
				Err(err).
				Str("rule_id", rule.ID).
				Msg("Failed to advance recurring rule")
			continue
		}
		advanced++
	}

	if advanced > 0 {
		j.log.Info().Int("advanced", advanced).Msg("Recurring rules advanced")
	}
	return nil
}

// NextAfter advances nextRun by the rule's frequency until it lands
// strictly after today.
func NextAfter(nextRun, frequency, today string) string {
	t, err := time.Parse("2006-01-02", nextRun)
	if err != nil {
		t, _ = time.Parse("2006-01-02", today)
	}

	limit, err := time.Parse("2006-01-02", today)
	if err != nil {
		limit = time.Now().UTC().Truncate(24 * time.Hour)
	}

	for !t.After(limit) {
		switch frequency {
		case FrequencyWeekly:
			t = t.AddDate(0, 0, 7)
		case FrequencyBiweekly:
			t = t.AddDate(0, 0, 14)
		default:
			t = t.AddDate(0, 1, 0)
		}
	}
	return t.Format("2006-01-02")
}
