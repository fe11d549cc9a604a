package gemini

import (
	"context"

	"github.com/tillerhq/tiller/pkg/ports"
)

// DefaultSteps builds the standard four-step pipeline backed by a single
// shared Gemini client.
func DefaultSteps(ctx context.Context, cfg Config, opts ...ClientOption) ([]ports.Step, error) {
	client, err := NewClient(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return []ports.Step{
		NewClarifier(client),
		NewResearcher(client),
		NewValidator(client),
		NewSynthesizer(client),
	}, nil
}
