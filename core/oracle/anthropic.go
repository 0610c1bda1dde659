package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// noAnswer is the token the model is instructed to reply with when it cannot
// determine a value.
const noAnswer = "NO ANSWER"

const systemPrompt = `You are an attribute normalizer for an e-commerce product catalog.
You are given one product record and one attribute to determine.
Answer with the attribute value only, on a single line, with no explanation.
If a list of valid values is given, the answer must be one of them verbatim.
If you cannot determine the value, answer exactly: NO ANSWER`

// Anthropic is an Oracle backed by the Anthropic Messages API.
type Anthropic struct {
	client anthropic.Client
	cfg    Config
}

// NewAnthropic creates an Anthropic-backed oracle.
func NewAnthropic(cfg Config) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic oracle: no API key configured")
	}
	return &Anthropic{
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		cfg:    cfg,
	}, nil
}

// Propose asks the model for the attribute value. Transport and API errors
// wrap ErrUnavailable; a "NO ANSWER" reply is an empty answer with nil error.
func (a *Anthropic) Propose(ctx context.Context, req Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.modelFor(req.Attribute)),
		MaxTokens: a.cfg.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(a.buildPrompt(req))),
		},
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return parseAnswer(text), nil
}

// modelFor maps attributes to models: simple detection questions go to the
// efficient model, category and naming questions to the flagship.
func (a *Anthropic) modelFor(attribute string) string {
	switch strings.ToLower(attribute) {
	case "brand", "product type", "stock status", "variant attribute name", "variant attribute value":
		return a.cfg.EfficientModel
	default:
		return a.cfg.FlagshipModel
	}
}

func (a *Anthropic) buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Attribute to determine: %s\n", req.Attribute)
	if req.Language != "" {
		fmt.Fprintf(&b, "Answer language: %s\n", req.Language)
	}
	fmt.Fprintf(&b, "\nProduct name: %s\n", req.ProductName)
	if req.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", req.URL)
	}
	if req.ShortDescription != "" {
		fmt.Fprintf(&b, "Short description: %s\n", req.ShortDescription)
	}
	if req.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", req.Description)
	}
	if len(req.Vocabulary) > 0 {
		fmt.Fprintf(&b, "\nValid values:\n")
		for _, v := range req.Vocabulary {
			fmt.Fprintf(&b, "- %s\n", v)
		}
	}
	if len(req.Hints) > 0 {
		fmt.Fprintf(&b, "\nHeuristic analysis found these candidates in the text; weigh them in your decision: %s\n",
			strings.Join(req.Hints, ", "))
	}
	if len(req.Examples) > 0 {
		max := a.cfg.MaxExamples
		if max <= 0 || max > len(req.Examples) {
			max = len(req.Examples)
		}
		fmt.Fprintf(&b, "\nPreviously resolved values, stay consistent with them:\n")
		for _, ex := range req.Examples[:max] {
			fmt.Fprintf(&b, "- %q -> %q\n", ex.Key, ex.Value)
		}
	}
	return b.String()
}

// parseAnswer normalizes the model reply: first non-empty line, trimmed, with
// the no-answer token mapped to an empty answer. Malformed output degrades to
// "no answer" rather than aborting anything.
func parseAnswer(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, noAnswer) {
			return ""
		}
		return strings.Trim(line, `"`)
	}
	return ""
}
