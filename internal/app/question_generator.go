package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/dkeye/tunequiz/internal/core"
	"github.com/dkeye/tunequiz/internal/domain"
	"github.com/rs/zerolog/log"
)

const defaultPoolSize = 25

// QuestionGenerator builds the ordered question list of a session from one
// catalog fetch. Kinds alternate by position, artist first, and no track is
// the answer to more than one question.
type QuestionGenerator struct {
	source   core.TrackSource
	poolSize int
	shuffle  core.Shuffle
}

func NewQuestionGenerator(source core.TrackSource, poolSize int) *QuestionGenerator {
	if poolSize < 2 {
		poolSize = defaultPoolSize
	}
	return &QuestionGenerator{source: source, poolSize: poolSize, shuffle: rand.Shuffle}
}

// Generate fails as a whole if any single question cannot be built.
func (g *QuestionGenerator) Generate(ctx context.Context, genre domain.Genre, count int) ([]domain.QuizQuestion, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidQuestionCount, count)
	}
	logger := log.With().Str("module", "app.questions").Stringer("genre", genre).Logger()

	fetched, err := g.source.FetchTracksByGenre(ctx, genre, max(g.poolSize, count))
	if err != nil {
		if !errors.Is(err, domain.ErrUpstream) && !errors.Is(err, context.Canceled) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstream, err)
		}
		logger.Warn().Err(err).Msg("track pool fetch failed")
		return nil, err
	}
	pool := core.UsableTracks(fetched)
	if len(pool) < count {
		logger.Warn().Int("pool", len(pool)).Int("count", count).Msg("track pool too small")
		return nil, fmt.Errorf("%w: %d usable tracks for %d questions", domain.ErrInsufficientTracks, len(pool), count)
	}

	answers := slices.Clone(pool)
	g.shuffle(len(answers), func(i, j int) { answers[i], answers[j] = answers[j], answers[i] })

	out := make([]domain.QuizQuestion, count)
	for i := range count {
		q, err := core.BuildQuestion(pool, answers[i], domain.KindAt(i), g.shuffle)
		if err != nil {
			logger.Warn().Err(err).Int("position", i).Msg("question build failed")
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		q.Position = i
		out[i] = *q
	}
	logger.Debug().Int("pool", len(pool)).Int("count", count).Msg("questions generated")
	return out, nil
}
