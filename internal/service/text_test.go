package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readable/internal/extract"
	"readable/internal/logging"
	"readable/internal/model"
	"readable/internal/readability"
	"readable/internal/speech"
	"readable/internal/upstream"
)

type fakeSimplifier struct {
	reply string
	err   error
	got   string
	ctx   context.Context
}

func (f *fakeSimplifier) Simplify(ctx context.Context, text string) (string, error) {
	f.got = text
	f.ctx = ctx
	return f.reply, f.err
}

type fakeSynthesizer struct {
	audio *speech.Audio
	err   error
	text  string
	voice string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text, voice string) (*speech.Audio, error) {
	f.text = text
	f.voice = voice
	return f.audio, f.err
}

type recordingObserver struct {
	calls []string
}

func (r *recordingObserver) ObserveUpstream(service, outcome string) {
	r.calls = append(r.calls, service+":"+outcome)
}

type fakeArchive struct {
	ArchiveService
	in  ArchiveInput
	err error
}

func (f *fakeArchive) Archive(_ context.Context, in ArchiveInput) (*model.Upload, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &model.Upload{ID: "upload-1"}, nil
}

type pagesDecoder []string

func (p pagesDecoder) Pages([]byte) ([]string, error) { return p, nil }

func TestTextService_ExtractUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("text upload is normalized", func(t *testing.T) {
		svc := NewTextService(TextDeps{})
		out, err := svc.ExtractUpload(ctx, UploadInput{
			Filename: "notes.txt",
			Reader:   strings.NewReader("Hello\n\n  world.  "),
		})
		require.NoError(t, err)
		assert.Equal(t, "Hello world.", out.Text)
		assert.Zero(t, out.Pages)
		assert.Empty(t, out.UploadID)
	})

	t.Run("pdf upload reports empty pages", func(t *testing.T) {
		var logs bytes.Buffer
		svc := NewTextService(TextDeps{
			Extractor: extract.New(extract.WithPDFDecoder(pagesDecoder{"Page one.", "", "Page three."})),
			Logger:    logging.New(&logs, time.UTC),
		})
		out, err := svc.ExtractUpload(ctx, UploadInput{Filename: "doc.pdf", Reader: strings.NewReader("%PDF")})
		require.NoError(t, err)
		assert.Equal(t, "Page one. Page three.", out.Text)
		assert.Equal(t, 3, out.Pages)
		assert.Equal(t, 1, out.EmptyPages)
		assert.Contains(t, logs.String(), "extract_partial")
	})

	t.Run("unknown kind is rejected before reading", func(t *testing.T) {
		svc := NewTextService(TextDeps{})
		_, err := svc.ExtractUpload(ctx, UploadInput{Filename: "image.png", Reader: strings.NewReader("x")})
		assert.ErrorIs(t, err, extract.ErrUnsupportedFormat)
	})

	t.Run("uppercase extension is unsupported", func(t *testing.T) {
		svc := NewTextService(TextDeps{})
		_, err := svc.ExtractUpload(ctx, UploadInput{Filename: "NOTES.TXT", Reader: strings.NewReader("x")})
		assert.ErrorIs(t, err, extract.ErrUnsupportedFormat)
	})

	t.Run("invalid utf-8 is a decode error", func(t *testing.T) {
		svc := NewTextService(TextDeps{})
		_, err := svc.ExtractUpload(ctx, UploadInput{Filename: "a.txt", Reader: bytes.NewReader([]byte{0xff, 0xfe})})
		assert.ErrorIs(t, err, extract.ErrDecode)
	})

	t.Run("oversized upload", func(t *testing.T) {
		svc := NewTextService(TextDeps{Limits: Limits{MaxUploadBytes: 4}})
		_, err := svc.ExtractUpload(ctx, UploadInput{Filename: "a.txt", Reader: strings.NewReader("12345")})
		assert.ErrorIs(t, err, ErrUploadTooLarge)

		out, err := svc.ExtractUpload(ctx, UploadInput{Filename: "a.txt", Reader: strings.NewReader("1234")})
		require.NoError(t, err)
		assert.Equal(t, "1234", out.Text)
	})

	t.Run("nil reader", func(t *testing.T) {
		_, err := NewTextService(TextDeps{}).ExtractUpload(ctx, UploadInput{Filename: "a.txt"})
		assert.ErrorIs(t, err, ErrReaderNil)
	})

	t.Run("archives raw bytes", func(t *testing.T) {
		archive := &fakeArchive{}
		svc := NewTextService(TextDeps{Archive: archive})
		out, err := svc.ExtractUpload(ctx, UploadInput{
			Filename:    "notes.txt",
			ContentType: "text/plain",
			Reader:      strings.NewReader("a  b\n"),
		})
		require.NoError(t, err)
		assert.Equal(t, "upload-1", out.UploadID)
		assert.Equal(t, "notes.txt", archive.in.Filename)
		assert.Equal(t, "text", archive.in.Kind)
		assert.Equal(t, "text/plain", archive.in.ContentType)
		assert.Equal(t, []byte("a  b\n"), archive.in.Data)
		assert.Equal(t, 3, archive.in.TextLength)
	})

	t.Run("archived text length counts runes", func(t *testing.T) {
		archive := &fakeArchive{}
		svc := NewTextService(TextDeps{Archive: archive})
		out, err := svc.ExtractUpload(ctx, UploadInput{Filename: "menu.txt", Reader: strings.NewReader("café  déjà vu")})
		require.NoError(t, err)
		assert.Equal(t, "café déjà vu", out.Text)
		assert.Equal(t, 12, archive.in.TextLength)
	})

	t.Run("archive failure does not fail the request", func(t *testing.T) {
		var logs bytes.Buffer
		svc := NewTextService(TextDeps{
			Archive: &fakeArchive{err: errors.New("bucket missing")},
			Logger:  logging.New(&logs, time.UTC),
		})
		out, err := svc.ExtractUpload(ctx, UploadInput{Filename: "notes.txt", Reader: strings.NewReader("hi")})
		require.NoError(t, err)
		assert.Equal(t, "hi", out.Text)
		assert.Empty(t, out.UploadID)
		assert.Contains(t, logs.String(), "archive_failed")
		assert.Contains(t, logs.String(), "bucket missing")
	})
}

func TestTextService_Simplify(t *testing.T) {
	ctx := context.Background()
	const original = "The committee deliberated extensively regarding the implementation."

	t.Run("scores both texts", func(t *testing.T) {
		simp := &fakeSimplifier{reply: "The group talked a lot about the plan."}
		obs := &recordingObserver{}
		svc := NewTextService(TextDeps{Simplifier: simp, Observer: obs, UpstreamTimeout: time.Minute})

		res, err := svc.Simplify(ctx, original)
		require.NoError(t, err)
		assert.Equal(t, original, simp.got)
		assert.Equal(t, original, res.Original.Text)
		assert.Equal(t, readability.Score(original), res.Original.Metrics)
		assert.Equal(t, "The group talked a lot about the plan.", res.Simplified.Text)
		assert.Equal(t, readability.Score(res.Simplified.Text), res.Simplified.Metrics)
		assert.Equal(t, []string{"simplification:success"}, obs.calls)

		_, hasDeadline := simp.ctx.Deadline()
		assert.True(t, hasDeadline)
	})

	t.Run("surrounding whitespace is stripped", func(t *testing.T) {
		simp := &fakeSimplifier{reply: "Hi world."}
		svc := NewTextService(TextDeps{Simplifier: simp})

		res, err := svc.Simplify(ctx, "  Hello world.\n")
		require.NoError(t, err)
		assert.Equal(t, "Hello world.", simp.got)
		assert.Equal(t, "Hello world.", res.Original.Text)
		assert.Equal(t, readability.Score("Hello world."), res.Original.Metrics)
	})

	t.Run("upstream failure", func(t *testing.T) {
		obs := &recordingObserver{}
		svc := NewTextService(TextDeps{Simplifier: &fakeSimplifier{err: errors.New("429 too many requests")}, Observer: obs})

		_, err := svc.Simplify(ctx, original)
		ue, ok := upstream.As(err)
		require.True(t, ok)
		assert.Equal(t, upstream.ServiceSimplification, ue.Service)
		assert.Equal(t, []string{"simplification:error"}, obs.calls)
	})

	t.Run("validation", func(t *testing.T) {
		simp := &fakeSimplifier{}
		svc := NewTextService(TextDeps{Simplifier: simp, Limits: Limits{MaxTextBytes: 10}})

		_, err := svc.Simplify(ctx, " \n\t")
		assert.ErrorIs(t, err, ErrTextEmpty)

		_, err = svc.Simplify(ctx, strings.Repeat("a", 11))
		assert.ErrorIs(t, err, ErrTextTooLarge)
		assert.Empty(t, simp.got)
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := NewTextService(TextDeps{}).Simplify(ctx, original)
		assert.ErrorIs(t, err, ErrSimplifierDisabled)
	})
}

func TestTextService_Speak(t *testing.T) {
	ctx := context.Background()

	t.Run("returns audio", func(t *testing.T) {
		synth := &fakeSynthesizer{audio: &speech.Audio{Data: []byte("ID3"), ContentType: "audio/mpeg"}}
		obs := &recordingObserver{}
		svc := NewTextService(TextDeps{Synthesizer: synth, Observer: obs})

		audio, err := svc.Speak(ctx, "Hello", " nova ")
		require.NoError(t, err)
		assert.Equal(t, "ID3", string(audio.Data))
		assert.Equal(t, "nova", synth.voice)
		assert.Equal(t, []string{"speech:success"}, obs.calls)
	})

	t.Run("upstream failure", func(t *testing.T) {
		svc := NewTextService(TextDeps{Synthesizer: &fakeSynthesizer{err: errors.New("boom")}})
		_, err := svc.Speak(ctx, "Hello", "")
		ue, ok := upstream.As(err)
		require.True(t, ok)
		assert.Equal(t, upstream.ServiceSpeech, ue.Service)
	})

	t.Run("text is trimmed before synthesis", func(t *testing.T) {
		synth := &fakeSynthesizer{audio: &speech.Audio{Data: []byte("ID3")}}
		_, err := NewTextService(TextDeps{Synthesizer: synth}).Speak(ctx, "\tRead this aloud. ", "")
		require.NoError(t, err)
		assert.Equal(t, "Read this aloud.", synth.text)
	})

	t.Run("empty text", func(t *testing.T) {
		synth := &fakeSynthesizer{}
		_, err := NewTextService(TextDeps{Synthesizer: synth}).Speak(ctx, "", "")
		assert.ErrorIs(t, err, ErrTextEmpty)
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := NewTextService(TextDeps{}).Speak(ctx, "Hello", "")
		assert.ErrorIs(t, err, ErrSpeechDisabled)
	})
}

func TestTextService_Analyze(t *testing.T) {
	scorer := readability.ScorerFunc(func(text string) readability.Metrics {
		return readability.Metrics{SyllableCount: len(text)}
	})
	svc := NewTextService(TextDeps{Scorer: scorer})

	res, err := svc.Analyze(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Metrics.SyllableCount)

	res, err = svc.Analyze(context.Background(), " abc\n")
	require.NoError(t, err)
	assert.Equal(t, "abc", res.Text)
	assert.Equal(t, 3, res.Metrics.SyllableCount)

	_, err = svc.Analyze(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrTextEmpty)
}
