// Package speech converts text to audio through a hosted text-to-speech API.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"readable/internal/upstream"
)

const (
	DefaultModel = "tts-1"
	DefaultVoice = "alloy"

	// DefaultFilename is the attachment name used when returning audio.
	DefaultFilename = "output.mp3"

	contentTypeMP3 = "audio/mpeg"
	readChunkSize  = 32 * 1024
)

var (
	ErrTextEmpty      = errors.New("text cannot be empty")
	ErrAPIKeyRequired = errors.New("speech api key is required")
)

// Audio is a fully buffered synthesis result.
type Audio struct {
	Data        []byte
	ContentType string
}

// Synthesizer turns text into audio using the given voice; an empty voice
// selects the implementation's default.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) (*Audio, error)
}

// Config holds the connection settings of the speech API.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Voice   string
}

// Client is a Synthesizer for the OpenAI audio speech endpoint.
// It is safe for concurrent use.
type Client struct {
	api   openai.Client
	model string
	voice string
}

var _ Synthesizer = (*Client)(nil)

// New builds a Client. Retries are disabled: a failed call fails the request.
func New(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &Client{
		api:   openai.NewClient(opts...),
		model: cfg.Model,
		voice: cfg.Voice,
	}, nil
}

// Synthesize requests mp3 audio for text and buffers the streamed response.
func (c *Client) Synthesize(ctx context.Context, text, voice string) (*Audio, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrTextEmpty
	}
	if voice == "" {
		voice = c.voice
	}

	resp, err := c.api.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModel(c.model),
		Voice:          openai.AudioSpeechNewParamsVoice(voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, upstream.Wrap(upstream.ServiceSpeech, err)
	}
	defer resp.Body.Close()

	data, err := Collect(resp.Body)
	if err != nil {
		return nil, upstream.Wrap(upstream.ServiceSpeech, fmt.Errorf("read audio stream: %w", err))
	}
	if len(data) == 0 {
		return nil, upstream.Wrap(upstream.ServiceSpeech, upstream.ErrEmptyResponse)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(ct, "audio/") {
		ct = contentTypeMP3
	}
	return &Audio{Data: data, ContentType: ct}, nil
}

// Collect reads r chunk by chunk and concatenates the chunks into one buffer.
func Collect(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)
	for {
		n, err := r.Read(chunk)
		buf.Write(chunk[:n])
		if errors.Is(err, io.EOF) {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}
