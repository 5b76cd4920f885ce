package application

import "context"

// Speller renders text in the given language to a WAV buffer. Empty input
// and zero-byte engine output are both failures, reported distinctly as
// domain.ErrEmptyText and domain.ErrEmptyAudio.
type Speller interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// Translator is best-effort: on any engine failure, or when the engine
// echoes the input unchanged, it returns the original text. Translation
// never fails the pipeline, it only degrades language fidelity.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) string
}
