// Package ai composes dataset-grounded prompts and dispatches them to the
// configured LLM.
package ai

import (
	"context"
	"strings"

	"datalens/internal"
	"datalens/internal/api"
	"datalens/internal/dataset"
	"datalens/internal/errors"
	"datalens/models"
	"datalens/ports"
)

// Analyst answers natural-language questions about a loaded dataset
type Analyst struct {
	llm      ports.ChatCompleter
	searcher ports.WebSearcher // nil when web search is not configured
	answers  ports.AnswerRepository
	hub      *api.SSEHub
	model    string
	numHits  int
	log      *internal.Logger
}

// NewAnalyst creates an analyst. searcher may be nil when SERPAPI_KEY is
// not set; asks that request web search then proceed without snippets.
func NewAnalyst(llm ports.ChatCompleter, searcher ports.WebSearcher, answers ports.AnswerRepository, hub *api.SSEHub, model string, numHits int, log *internal.Logger) *Analyst {
	if numHits <= 0 {
		numHits = 3
	}
	return &Analyst{
		llm:      llm,
		searcher: searcher,
		answers:  answers,
		hub:      hub,
		model:    model,
		numHits:  numHits,
		log:      log,
	}
}

// AskRequest carries one question about a loaded dataset
type AskRequest struct {
	Entry        *dataset.Entry
	Question     string
	UseWebSearch bool
}

// Ask composes the prompt, calls the LLM and records the exchange.
// A failing web search degrades to answering from the dataset alone.
func (a *Analyst) Ask(ctx context.Context, req AskRequest) (*models.Answer, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, errors.InvalidInput("question is empty")
	}

	ds := req.Entry.Dataset
	datasetID := ds.ID.String()
	a.publish(datasetID, api.EventAskStarted, question)

	system := SystemContext(req.Entry.Summary, ds.ColumnNames())

	var snippets []ports.Snippet
	if req.UseWebSearch {
		snippets = a.searchWeb(ctx, datasetID, question)
	}
	if len(snippets) > 0 {
		system += WebContext(snippets)
	}

	a.log.Debug("[Analyst] Prompt for dataset %s: %d system chars", datasetID, len(system))

	answerText, err := a.llm.ChatCompletion(ctx, system, question)
	if err != nil {
		a.publish(datasetID, api.EventAskFailed, err.Error())
		return nil, errors.Wrap(err, "LLM request failed")
	}

	answer := models.NewAnswer(ds.ID, question, answerText, a.model, req.UseWebSearch, len(snippets))
	if err := a.answers.Create(ctx, answer); err != nil {
		// History is best effort, the generated answer still stands
		a.log.Warn("[Analyst] Failed to persist answer for dataset %s: %v", datasetID, err)
	}

	a.publish(datasetID, api.EventAnswerReady, answer.ID.String())
	return answer, nil
}

func (a *Analyst) searchWeb(ctx context.Context, datasetID, question string) []ports.Snippet {
	if a.searcher == nil {
		a.log.Warn("[Analyst] Web search requested but SERPAPI_KEY is not configured")
		return nil
	}

	a.publish(datasetID, api.EventSearchStarted, question)
	snippets, err := a.searcher.Search(ctx, question, a.numHits)
	if err != nil {
		a.log.Warn("[Analyst] Web search failed, answering without snippets: %v", err)
		a.publish(datasetID, api.EventSearchFinished, "search failed")
		return nil
	}

	a.publish(datasetID, api.EventSearchFinished, "")
	return snippets
}

func (a *Analyst) publish(datasetID, eventType, message string) {
	if a.hub != nil {
		a.hub.Publish(datasetID, eventType, message)
	}
}
