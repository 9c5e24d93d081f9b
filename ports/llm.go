package ports

import "context"

// ChatCompleter sends one system+user exchange to a hosted LLM and
// returns the generated text.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, system, user string) (string, error)
}
