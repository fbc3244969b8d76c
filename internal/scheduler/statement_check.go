package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tally-app/tally/internal/service"
)

// StatementCheckJob verifies statement coverage through the service's own
// 24-hour gate, so scheduling it more often than daily is harmless.
type StatementCheckJob struct {
	Statements *service.StatementService
	Log        zerolog.Logger
}

func (j *StatementCheckJob) Name() string { return "statement-check" }

func (j *StatementCheckJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	generated, ran, err := j.Statements.CheckDue(ctx)
	if err != nil {
		return err
	}
	if ran {
		j.Log.Info().Int("generated", len(generated)).Msg("statement check complete")
	}
	return nil
}
