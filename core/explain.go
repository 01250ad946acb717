package core

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Provider is the upstream completion service called on a memo store miss
type Provider interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Request carries the fields of one explanation request. SQL is required;
// the rest is optional challenge context.
type Request struct {
	SQL         string
	ChallengeID string
	Title       string
	Description string
	GradeStatus string
}

// ExplainerConfig configures the explainer
type ExplainerConfig struct {
	// MaxEntries bounds the memo store; <= 0 selects the default (1000)
	MaxEntries int

	// DescriptionLimit bounds the description text sent upstream;
	// <= 0 selects the default (500)
	DescriptionLimit int

	// Coalesce shares one in-flight upstream call between concurrent
	// requests with the same key. Off by default: without it, identical
	// concurrent requests can each call upstream and overwrite the store
	// with (likely identical) results. Turning it on is a strengthening
	// of that documented behavior, not a fix for a bug.
	Coalesce bool
}

// explainResult is what a coalesced flight hands to its waiters
type explainResult struct {
	text      string
	fromStore bool
}

// Explainer memoizes upstream explanations keyed by request content
type Explainer struct {
	provider Provider
	store    *MemoStore
	keys     *KeyBuilder
	prompts  *PromptBuilder
	coalesce bool
	group    singleflight.Group
}

// NewExplainer creates an explainer with an empty memo store
func NewExplainer(provider Provider, conf ExplainerConfig) *Explainer {
	return &Explainer{
		provider: provider,
		store:    NewMemoStore(conf.MaxEntries),
		keys:     NewKeyBuilder(),
		prompts:  NewPromptBuilder(conf.DescriptionLimit),
		coalesce: conf.Coalesce,
	}
}

// Store returns the underlying memo store
func (ex *Explainer) Store() *MemoStore {
	return ex.store
}

// Explain returns the explanation for req, serving it from the memo store
// when a prior identical request filled it. cached reports whether the
// store served the response.
func (ex *Explainer) Explain(ctx context.Context, req Request) (explanation string, cached bool, err error) {
	key := ex.keys.Build(req.SQL, req.ChallengeID, req.Title, req.GradeStatus)

	if val, ok := ex.store.Get(ctx, key); ok {
		return val, true, nil
	}

	if ex.coalesce {
		v, err, _ := ex.group.Do(key, func() (interface{}, error) {
			// A flight that starts after an earlier one already filled
			// the store serves the stored text instead of calling
			// upstream again.
			if val, ok := ex.store.Get(ctx, key); ok {
				return explainResult{text: val, fromStore: true}, nil
			}
			text, err := ex.fetch(ctx, key, req)
			if err != nil {
				return nil, err
			}
			return explainResult{text: text}, nil
		})
		if err != nil {
			return "", false, err
		}
		res := v.(explainResult)
		return res.text, res.fromStore, nil
	}

	explanation, err = ex.fetch(ctx, key, req)
	if err != nil {
		return "", false, err
	}
	return explanation, false, nil
}

// fetch calls upstream and fills the store. Failures fill nothing: only
// successful explanations are memoized.
func (ex *Explainer) fetch(ctx context.Context, key string, req Request) (string, error) {
	text, err := ex.provider.Complete(ctx, ex.prompts.System(), ex.prompts.User(req))
	if err != nil {
		return "", err
	}
	ex.store.Put(ctx, key, text)
	return text, nil
}
