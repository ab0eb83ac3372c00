package mock

import (
	"context"
	"sync"

	"ai-promptscope-be/pkg/llm"
)

// Provider is a scripted LLMProvider for tests. Responses are consumed
// in FIFO order; when the script runs out the last response repeats.
// Every prompt is recorded for assertions.
type Provider struct {
	mu        sync.Mutex
	responses []string
	err       error
	Prompts   []string
}

var _ llm.LLMProvider = &Provider{}

func New(responses ...string) *Provider {
	return &Provider{responses: responses}
}

// Fail makes every subsequent call return err.
func (p *Provider) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Enqueue appends responses to the script.
func (p *Provider) Enqueue(responses ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, responses...)
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	prompt := ""
	if len(history) > 0 {
		prompt = history[len(history)-1].Content
	}
	return p.next(ctx, prompt)
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.next(ctx, prompt)
}

func (p *Provider) next(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.Prompts = append(p.Prompts, prompt)
	if p.err != nil {
		return "", p.err
	}
	if len(p.responses) == 0 {
		return "", nil
	}
	response := p.responses[0]
	if len(p.responses) > 1 {
		p.responses = p.responses[1:]
	}
	return response, nil
}
