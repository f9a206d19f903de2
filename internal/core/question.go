package core

import (
	"fmt"
	"slices"

	"github.com/dkeye/tunequiz/internal/domain"
)

const maxOptions = 4

var prompts = map[domain.QuestionKind]string{
	domain.KindArtist: "Who is the artist of this song?",
	domain.KindTrack:  "What is the title of this song?",
}

// Shuffle matches rand.Shuffle.
type Shuffle func(n int, swap func(i, j int))

// UsableTracks drops unusable tracks and repeats of the same external id,
// keeping the first occurrence.
func UsableTracks(tracks []SourceTrack) []SourceTrack {
	out := make([]SourceTrack, 0, len(tracks))
	seen := make(map[string]struct{}, len(tracks))
	for _, t := range tracks {
		if !t.Usable() {
			continue
		}
		if _, dup := seen[t.ExternalID]; dup {
			continue
		}
		seen[t.ExternalID] = struct{}{}
		out = append(out, t)
	}
	return out
}

func answerOf(t SourceTrack, kind domain.QuestionKind) string {
	if kind == domain.KindArtist {
		return t.Artist
	}
	return t.Title
}

// BuildQuestion makes a question of the given kind about correct. Up to
// three other distinct answer values from the usable tracks of pool become
// the wrong options.
func BuildQuestion(pool []SourceTrack, correct SourceTrack, kind domain.QuestionKind, shuffle Shuffle) (*domain.QuizQuestion, error) {
	prompt, ok := prompts[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown question kind %q", domain.ErrInvalidState, kind)
	}
	if !correct.Usable() {
		return nil, fmt.Errorf("%w: answer track %q is unusable", domain.ErrInsufficientTracks, correct.ExternalID)
	}
	answer := answerOf(correct, kind)

	var wrong []string
	for _, t := range pool {
		if !t.Usable() {
			continue
		}
		if v := answerOf(t, kind); v != answer && !slices.Contains(wrong, v) {
			wrong = append(wrong, v)
		}
	}
	if len(wrong) == 0 {
		return nil, fmt.Errorf("%w: no wrong %s options", domain.ErrInsufficientTracks, kind)
	}
	shuffle(len(wrong), func(i, j int) { wrong[i], wrong[j] = wrong[j], wrong[i] })
	if len(wrong) > maxOptions-1 {
		wrong = wrong[:maxOptions-1]
	}

	options := append([]string{answer}, wrong...)
	shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	q := &domain.QuizQuestion{
		Prompt:        prompt,
		Kind:          kind,
		CorrectAnswer: answer,
		Options:       options,
		CorrectIndex:  slices.Index(options, answer),
		PreviewURL:    correct.PreviewURL,
		CoverURL:      correct.CoverURL,
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}
