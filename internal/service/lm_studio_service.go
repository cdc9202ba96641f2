package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"

	"github.com/fadilmartias/invest-analyzer/internal/config"
	"github.com/fadilmartias/invest-analyzer/internal/invest"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

type LMStudioServiceInterface interface {
	Connect(ctx context.Context) (string, error)
	Complete(ctx context.Context, prompt string, opts invest.CompleteOptions) (string, error)
}

// LMStudioService talks to an LM Studio server over its OpenAI-compatible
// HTTP API. It implements invest.Completer.
type LMStudioService struct {
	BaseURL string
	Model   string
	client  *resty.Client
}

func NewLMStudioService() *LMStudioService {
	cfg := config.LoadLMStudioConfig()
	return &LMStudioService{
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		client:  resty.New().SetBaseURL(cfg.BaseURL),
	}
}

// Connect verifies the server answers and returns the model it will use.
// If the configured model is not loaded it keeps the first one the server
// reports, so a renamed local model keeps working.
func (s *LMStudioService) Connect(ctx context.Context) (string, error) {
	resp, err := s.client.R().SetContext(ctx).Get("/v1/models")
	if err != nil {
		return "", s.classifyTransportError(err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("servidor LM Studio respondió %d: %w", resp.StatusCode(), invest.ErrUnreachable)
	}

	available := gjson.Get(resp.String(), "data.#.id")
	found := false
	first := ""
	for _, id := range available.Array() {
		if first == "" {
			first = id.String()
		}
		if id.String() == s.Model {
			found = true
			break
		}
	}
	if !found && first != "" {
		log.Printf("Modelo %s no cargado en LM Studio, usando %s", s.Model, first)
		s.Model = first
	}
	return s.Model, nil
}

// Complete sends one chat completion and returns the raw assistant text.
func (s *LMStudioService) Complete(ctx context.Context, prompt string, opts invest.CompleteOptions) (string, error) {
	req := s.client.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"model": s.Model,
			"messages": []map[string]string{
				{"role": "system", "content": "Eres un experto en metodologías ágiles y criterios INVEST."},
				{"role": "user", "content": prompt},
			},
			"temperature": opts.Temperature,
			"max_tokens":  opts.MaxTokens,
		})
	if opts.Timeout > 0 {
		timeoutCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
		req.SetContext(timeoutCtx)
	}

	resp, err := req.Post("/v1/chat/completions")
	if err != nil {
		return "", s.classifyTransportError(err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("servidor LM Studio respondió %d: %w", resp.StatusCode(), invest.ErrUnreachable)
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if text == "" {
		return "", fmt.Errorf("respuesta sin contenido: %w", invest.ErrMalformedResponse)
	}
	return text, nil
}

func (s *LMStudioService) classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("petición a LM Studio: %w", invest.ErrTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("petición a LM Studio: %w", invest.ErrTimeout)
	}
	if strings.Contains(err.Error(), "context deadline exceeded") {
		return fmt.Errorf("petición a LM Studio: %w", invest.ErrTimeout)
	}
	return fmt.Errorf("petición a LM Studio (%v): %w", err, invest.ErrUnreachable)
}
