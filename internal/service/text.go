package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"readable/internal/extract"
	"readable/internal/model"
	"readable/internal/readability"
	"readable/internal/simplify"
	"readable/internal/speech"
	"readable/internal/upstream"
)

var (
	ErrTextRequired   = errors.New("no text provided")
	ErrTextEmpty      = errors.New("empty text provided")
	ErrTextTooLarge   = errors.New("text too large")
	ErrUploadTooLarge = errors.New("upload too large")
	ErrReaderNil      = errors.New("reader is nil")

	ErrSimplifierDisabled = errors.New("simplification is not configured")
	ErrSpeechDisabled     = errors.New("speech synthesis is not configured")
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// UploadInput is a file received from a client.
type UploadInput struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// TextService holds the text use cases exposed over HTTP.
type TextService interface {
	// ExtractUpload reads the upload and returns its normalized text. The raw
	// bytes are archived when an archive is configured; archive failures are
	// logged only.
	ExtractUpload(ctx context.Context, in UploadInput) (*model.ExtractedText, error)

	// Simplify rewrites text in plainer words and scores both versions.
	Simplify(ctx context.Context, text string) (*model.Simplification, error)

	// Speak synthesizes text with the given voice.
	Speak(ctx context.Context, text, voice string) (*speech.Audio, error)

	// Analyze returns readability metrics for text.
	Analyze(ctx context.Context, text string) (*model.ScoredText, error)
}

// UpstreamObserver records the outcome of remote API calls.
type UpstreamObserver interface {
	ObserveUpstream(service, outcome string)
}

// Limits bound the size of request payloads. Zero disables a bound.
type Limits struct {
	MaxUploadBytes int64
	MaxTextBytes   int
}

// TextDeps are the collaborators of a TextService. Simplifier, Synthesizer,
// Archive and Observer are optional.
type TextDeps struct {
	Extractor       *extract.Extractor
	Simplifier      simplify.Simplifier
	Synthesizer     speech.Synthesizer
	Scorer          readability.Scorer
	Archive         ArchiveService
	Observer        UpstreamObserver
	Logger          *slog.Logger
	Limits          Limits
	UpstreamTimeout time.Duration
}

type textService struct {
	TextDeps
}

// NewTextService constructs a TextService, filling in defaults for the
// extractor, scorer and logger when they are nil.
func NewTextService(deps TextDeps) TextService {
	if deps.Extractor == nil {
		deps.Extractor = extract.New()
	}
	if deps.Scorer == nil {
		deps.Scorer = readability.Flesch
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &textService{TextDeps: deps}
}

func (s *textService) ExtractUpload(ctx context.Context, in UploadInput) (*model.ExtractedText, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	kind := extract.KindFromFilename(in.Filename)
	if kind == extract.KindUnknown {
		return nil, fmt.Errorf("%w: %q", extract.ErrUnsupportedFormat, in.Filename)
	}

	data, err := s.readUpload(in.Reader)
	if err != nil {
		return nil, err
	}

	res, err := s.Extractor.Extract(kind, data)
	if err != nil {
		return nil, err
	}

	out := &model.ExtractedText{Text: res.Text, Pages: res.Pages, EmptyPages: res.EmptyPages}
	if res.Partial() {
		s.Logger.InfoContext(ctx, "extract_partial",
			"filename", in.Filename,
			"pages", res.Pages,
			"empty_pages", res.EmptyPages,
		)
	}

	if s.Archive != nil {
		u, err := s.Archive.Archive(ctx, ArchiveInput{
			Filename:    in.Filename,
			Kind:        kind.String(),
			ContentType: in.ContentType,
			Data:        data,
			TextLength:  utf8.RuneCountInString(res.Text),
		})
		if err != nil {
			s.Logger.ErrorContext(ctx, "archive_failed",
				"filename", in.Filename,
				"error_message", err.Error(),
			)
		} else {
			out.UploadID = u.ID
		}
	}
	return out, nil
}

func (s *textService) readUpload(r io.Reader) ([]byte, error) {
	if s.Limits.MaxUploadBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, s.Limits.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.Limits.MaxUploadBytes {
		return nil, ErrUploadTooLarge
	}
	return data, nil
}

func (s *textService) Simplify(ctx context.Context, text string) (*model.Simplification, error) {
	text, err := s.prepare(text)
	if err != nil {
		return nil, err
	}
	if s.Simplifier == nil {
		return nil, ErrSimplifierDisabled
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	simplified, err := s.Simplifier.Simplify(ctx, text)
	s.observe(upstream.ServiceSimplification, err)
	if err != nil {
		return nil, upstream.Wrap(upstream.ServiceSimplification, err)
	}

	return &model.Simplification{
		Original:   model.ScoredText{Text: text, Metrics: s.Scorer.Score(text)},
		Simplified: model.ScoredText{Text: simplified, Metrics: s.Scorer.Score(simplified)},
	}, nil
}

func (s *textService) Speak(ctx context.Context, text, voice string) (*speech.Audio, error) {
	text, err := s.prepare(text)
	if err != nil {
		return nil, err
	}
	if s.Synthesizer == nil {
		return nil, ErrSpeechDisabled
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	audio, err := s.Synthesizer.Synthesize(ctx, text, strings.TrimSpace(voice))
	s.observe(upstream.ServiceSpeech, err)
	if err != nil {
		return nil, upstream.Wrap(upstream.ServiceSpeech, err)
	}
	return audio, nil
}

func (s *textService) Analyze(_ context.Context, text string) (*model.ScoredText, error) {
	text, err := s.prepare(text)
	if err != nil {
		return nil, err
	}
	return &model.ScoredText{Text: text, Metrics: s.Scorer.Score(text)}, nil
}

// prepare trims text and checks it against the limits. Callers use only the
// trimmed value from then on.
func (s *textService) prepare(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrTextEmpty
	}
	if s.Limits.MaxTextBytes > 0 && len(text) > s.Limits.MaxTextBytes {
		return "", ErrTextTooLarge
	}
	return text, nil
}

func (s *textService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.UpstreamTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.UpstreamTimeout)
}

func (s *textService) observe(service string, err error) {
	if s.Observer == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	s.Observer.ObserveUpstream(service, outcome)
}
