package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const generateTimeout = 2 * time.Minute

// GenerateRecommendationsJob runs a redistribution matching pass
type GenerateRecommendationsJob struct {
	log       zerolog.Logger
	generator RecommendationGenerator
}

// NewGenerateRecommendationsJob creates a new GenerateRecommendationsJob
func NewGenerateRecommendationsJob(generator RecommendationGenerator) *GenerateRecommendationsJob {
	return &GenerateRecommendationsJob{
		log:       zerolog.Nop(),
		generator: generator,
	}
}

// SetLogger sets the logger for the job
func (j *GenerateRecommendationsJob) SetLogger(log zerolog.Logger) {
	j.log = log.With().Str("job", j.Name()).Logger()
}

// Name returns the job name
func (j *GenerateRecommendationsJob) Name() string {
	return "generate_recommendations"
}

// Run executes the generation pass
func (j *GenerateRecommendationsJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	result, err := j.generator.Generate(ctx)
	if err != nil {
		return fmt.Errorf("failed to generate recommendations: %w", err)
	}

	j.log.Info().Int("generated", result.GeneratedCount).Msg("Scheduled generation completed")
	return nil
}
