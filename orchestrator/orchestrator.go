// Package orchestrator runs a cashflow.Registry's models to completion: it
// topologically sorts them into passes, executes each pass (concurrently
// for models declared pure), and commits each pass's postings to the
// ledger as a single batch before the next pass can see them (spec.md
// §4.4). The concurrency shape is grounded on the teacher's
// BatchExecuteBusinessFlows: a sync.WaitGroup fans out pass work and a
// buffered error channel collects the first failures without a data race.
package orchestrator

import (
	"fmt"
	"sort"
	"sync"

	"performa/cashflow"
	"performa/internal/apperrors"
	"performa/internal/logger"
	"performa/ledger"
	"performa/model"
)

// Run executes every model in reg against timeline/settings, posting
// results to l pass by pass, and returns the outputs produced along the
// way (keyed by model ID then output name) for callers that need them
// beyond what landed in the ledger.
func Run(reg *cashflow.Registry, l *ledger.Ledger, timeline model.Timeline, settings model.Settings) (map[string]map[string]*model.CashFlowSeries, error) {
	passes, err := buildPasses(reg)
	if err != nil {
		return nil, err
	}

	outputs := make(map[string]map[string]*model.CashFlowSeries)

	for passNum, pass := range passes {
		sort.Strings(pass)

		ctx := cashflow.Context{Timeline: timeline, Settings: settings, Outputs: outputs}

		postings, err := runPass(reg, pass, ctx)
		if err != nil {
			return nil, err
		}

		if err := commitPass(l, postings, uint8(passNum+1)); err != nil {
			return nil, err
		}

		for modelID, named := range postings {
			if outputs[modelID] == nil {
				outputs[modelID] = make(map[string]*model.CashFlowSeries)
			}
			for _, p := range named {
				outputs[modelID][p.Name] = p.Series
			}
		}

		logger.WithFields(map[string]interface{}{
			"pass":        passNum + 1,
			"model_count": len(pass),
		}).Info("orchestrator pass complete")
	}

	return outputs, nil
}

// runPass executes every model ID in pass, in lexicographic order for
// sequential models; models declared Pure() run concurrently with each
// other via a WaitGroup, their results collected through a buffered error
// channel so the first failure aborts the whole pass without leaking a
// goroutine.
func runPass(reg *cashflow.Registry, pass []string, ctx cashflow.Context) (map[string][]cashflow.Posting, error) {
	results := make(map[string][]cashflow.Posting, len(pass))
	var mu sync.Mutex

	var pure, sequential []string
	for _, id := range pass {
		m, _ := reg.Get(id)
		if m.Pure() {
			pure = append(pure, id)
		} else {
			sequential = append(sequential, id)
		}
	}

	if len(pure) > 0 {
		var wg sync.WaitGroup
		errCh := make(chan error, len(pure))

		for _, id := range pure {
			wg.Add(1)
			go func(modelID string) {
				defer wg.Done()
				m, _ := reg.Get(modelID)
				postings, err := m.Compute(ctx)
				if err != nil {
					errCh <- fmt.Errorf("model %s failed: %w", modelID, err)
					return
				}
				mu.Lock()
				results[modelID] = postings
				mu.Unlock()
			}(id)
		}

		wg.Wait()
		close(errCh)
		for err := range errCh {
			if err != nil {
				return nil, err
			}
		}
	}

	for _, id := range sequential {
		m, _ := reg.Get(id)
		postings, err := m.Compute(ctx)
		if err != nil {
			return nil, fmt.Errorf("model %s failed: %w", id, err)
		}
		results[id] = postings
	}

	return results, nil
}

// commitPass posts every model's postings from one pass to the ledger as a
// single bulk Transaction; a failure anywhere discards the whole pass
// (spec.md §4.4.4).
func commitPass(l *ledger.Ledger, passResults map[string][]cashflow.Posting, passNum uint8) error {
	var modelIDs []string
	for id := range passResults {
		modelIDs = append(modelIDs, id)
	}
	sort.Strings(modelIDs)

	return l.Transaction(func() error {
		for _, modelID := range modelIDs {
			for _, p := range passResults[modelID] {
				meta := p.Meta
				meta.PassNum = passNum
				if !model.IsAllowed(meta.Category, meta.Subcategory) {
					return apperrors.Newf(apperrors.KindConfiguration,
						"model %s posted disallowed subcategory %s under category %s",
						modelID, meta.Subcategory, meta.Category).WithModel(modelID)
				}
				if err := l.AppendSeries(p.Series, meta); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
