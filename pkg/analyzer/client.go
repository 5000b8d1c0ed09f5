package analyzer

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/rerr"
)

// Analyzer wraps an Anthropic client for the two structured-output calls
// the ingestion pipeline needs: conversation digesting and deep knowledge
// extraction.
type Analyzer struct {
	client anthropic.Client
}

// New builds an Analyzer from an API key. Passing an empty key is valid:
// no key option is set and the SDK's own defaults apply; a call whose
// request fails returns a Network error rather than silently no-op'ing.
func New(apiKey string) *Analyzer {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &Analyzer{client: anthropic.NewClient(opts...)}
}

// AnalyzeConversation digests a chat room's raw transcript into decisions,
// action items, risks, and a summary.
func (a *Analyzer) AnalyzeConversation(ctx context.Context, transcript string) (*Digest, error) {
	raw, err := a.complete(ctx, digestSystemPrompt, truncate(transcript))
	if err != nil {
		return nil, err
	}
	return parseDigest(raw)
}

// ExtractKnowledge performs deep extraction of durable knowledge items
// from a single piece of source text (an action note, a review comment,
// a digest item).
func (a *Analyzer) ExtractKnowledge(ctx context.Context, text string) (*Extraction, error) {
	raw, err := a.complete(ctx, extractSystemPrompt, truncate(text))
	if err != nil {
		return nil, err
	}
	return parseExtraction(raw)
}

// complete issues a single non-streaming Messages call and returns the
// concatenated text of the response's content blocks.
func (a *Analyzer) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(ModelHaiku),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", rerr.Wrap(rerr.Network, "analyzer.complete", err)
	}

	var out string
	for _, block := range resp.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	if out == "" {
		return "", rerr.New(rerr.Network, "analyzer.complete", fmt.Sprintf("empty response from model %s", ModelHaiku))
	}
	return out, nil
}
