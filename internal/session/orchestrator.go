// Package session drives the recommendation chain state machine: bootstrap,
// the finish-activity workflow, and reset.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Rusith21/Autism-parent-app/internal/domain"
	"github.com/Rusith21/Autism-parent-app/internal/journal"
	"github.com/Rusith21/Autism-parent-app/internal/platform/logger"
	"github.com/Rusith21/Autism-parent-app/internal/recommender"
	"github.com/Rusith21/Autism-parent-app/internal/store"
)

// ErrFinishInFlight rejects a second workflow while one is still
// submitting. Concurrent submissions would both read the same frontier and
// both try to extend the chain.
var ErrFinishInFlight = errors.New("a finish workflow is already in flight")

// ErrInvalidForm marks answers the service contract cannot express. No
// network call is made for them.
var ErrInvalidForm = errors.New("invalid form answers")

type Deps struct {
	Store   store.ChainStore
	Client  recommender.Client
	Journal journal.Recorder
	Log     *logger.Logger

	// Catalog is the bootstrap seed pool; DefaultCatalog when nil.
	Catalog []domain.Activity

	// Rand drives the uniform seed pick. Inject a seeded source in tests;
	// nil gets a time-seeded one.
	Rand *rand.Rand

	TopK      int
	FollowupN int
}

// Orchestrator owns the authoritative chain value between transitions.
// Persistence itself stays in the chain store; the only in-memory state
// here is the single-in-flight guard.
type Orchestrator struct {
	store   store.ChainStore
	client  recommender.Client
	journal journal.Recorder
	log     *logger.Logger

	catalog   []domain.Activity
	topK      int
	followupN int

	rngMu sync.Mutex
	rng   *rand.Rand

	guardMu  sync.Mutex
	inFlight bool
}

func New(deps Deps) (*Orchestrator, error) {
	if deps.Store == nil {
		return nil, errors.New("session: missing store")
	}
	if deps.Client == nil {
		return nil, errors.New("session: missing recommender client")
	}
	if deps.Log == nil {
		return nil, errors.New("session: missing logger")
	}
	rec := deps.Journal
	if rec == nil {
		rec = journal.NewNopRecorder()
	}
	catalog := deps.Catalog
	if len(catalog) == 0 {
		catalog = DefaultCatalog(deps.Log)
	}
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	topK := deps.TopK
	if topK <= 0 {
		topK = recommender.DefaultTopK
	}
	followupN := deps.FollowupN
	if followupN <= 0 {
		followupN = recommender.DefaultFollowupN
	}
	return &Orchestrator{
		store:     deps.Store,
		client:    deps.Client,
		journal:   rec,
		log:       deps.Log.With("component", "SessionOrchestrator"),
		catalog:   catalog,
		topK:      topK,
		followupN: followupN,
		rng:       rng,
	}, nil
}

// Bootstrap loads the persisted chain; when storage is empty it seeds one
// activity picked uniformly from the catalog and persists it. Returns the
// resulting chain.
func (o *Orchestrator) Bootstrap(ctx context.Context) (domain.Chain, error) {
	chain, err := o.store.LoadChain(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if len(chain) > 0 {
		return chain, nil
	}

	seed := o.catalog[o.pick(len(o.catalog))]
	chain = domain.Chain{seed}
	if err := o.store.SaveChain(ctx, chain); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	o.log.Info("seeded new chain", "activity_id", seed.ID, "name", seed.Name)
	return chain, nil
}

// Snapshot returns the chain (bootstrapping first when empty) and the
// finished ids, for rendering.
func (o *Orchestrator) Snapshot(ctx context.Context) (domain.Chain, domain.FinishedSet, error) {
	chain, err := o.Bootstrap(ctx)
	if err != nil {
		return nil, nil, err
	}
	finished, err := o.store.LoadFinished(ctx)
	if err != nil {
		return nil, nil, err
	}
	return chain, finished, nil
}

// FinishResult is the outcome of one successful finish workflow.
type FinishResult struct {
	// FinishedID is the frontier id that was marked finished.
	FinishedID string
	// Chain is the post-workflow chain snapshot.
	Chain domain.Chain
	// Response carries the decoded service result, including any follow-up
	// questions. Top1 is nil when the chain dead-ended.
	Response *domain.PredictionResponse
}

// FinishActivity runs the finish workflow. tappedID is the card the user
// interacted with; the request always advances from the chain frontier
// regardless. On any service failure the chain and finished set stay
// untouched and the error propagates for display.
func (o *Orchestrator) FinishActivity(ctx context.Context, tappedID string, answers domain.FormAnswers) (*FinishResult, error) {
	if err := answers.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidForm, err)
	}

	if err := o.acquire(); err != nil {
		return nil, err
	}
	defer o.release()

	var (
		chain    domain.Chain
		finished domain.FinishedSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		chain, err = o.store.LoadChain(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		finished, err = o.store.LoadFinished(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("finish: %w", err)
	}

	frontier, ok := chain.Frontier()
	if !ok {
		return nil, errors.New("finish: chain is empty, boot first")
	}
	if tappedID != "" && tappedID != frontier.ID {
		o.log.Debug("finish tapped behind the frontier",
			"tapped_id", tappedID, "frontier_id", frontier.ID)
	}

	resp, err := o.client.Predict(ctx, recommender.PredictionInput{
		Context:    answers.Context(frontier.ID),
		TopK:       o.topK,
		FollowupN:  o.followupN,
		ExcludeIDs: domain.BuildExcludeIDs(frontier.ID, finished),
	})
	if err != nil {
		o.log.Warn("prediction failed, chain unchanged", "error", err, "activity_id", frontier.ID)
		return nil, err
	}

	// Mark finished first, then extend. A crash in between loses only the
	// extension; the next boot reloads a consistent prior state.
	if err := o.store.MarkFinished(ctx, frontier.ID); err != nil {
		return nil, fmt.Errorf("finish: %w", err)
	}
	newChain := chain
	if resp.Top1 != nil {
		newChain = chain.Append(resp.Top1.Activity())
		if err := o.store.SaveChain(ctx, newChain); err != nil {
			return nil, fmt.Errorf("finish: %w", err)
		}
	} else {
		o.log.Info("no further recommendation, chain dead-ends", "activity_id", frontier.ID)
	}

	o.recordJournal(ctx, frontier.ID, answers, resp)

	return &FinishResult{
		FinishedID: frontier.ID,
		Chain:      newChain,
		Response:   resp,
	}, nil
}

// Reset clears all persisted state and re-seeds. Refused while a finish
// workflow is submitting.
func (o *Orchestrator) Reset(ctx context.Context) (domain.Chain, error) {
	if err := o.acquire(); err != nil {
		return nil, err
	}
	defer o.release()

	if err := o.store.ResetAll(ctx); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	o.log.Info("chain state reset")
	return o.Bootstrap(ctx)
}

func (o *Orchestrator) recordJournal(ctx context.Context, activityID string, answers domain.FormAnswers, resp *domain.PredictionResponse) {
	rec, err := journal.NewFinishRecord(activityID, answers, resp)
	if err != nil {
		o.log.Warn("journal snapshot failed", "error", err)
		return
	}
	if err := o.journal.Record(ctx, rec); err != nil {
		o.log.Warn("journal write failed", "error", err)
	}
}

func (o *Orchestrator) acquire() error {
	o.guardMu.Lock()
	defer o.guardMu.Unlock()
	if o.inFlight {
		return ErrFinishInFlight
	}
	o.inFlight = true
	return nil
}

func (o *Orchestrator) release() {
	o.guardMu.Lock()
	o.inFlight = false
	o.guardMu.Unlock()
}

func (o *Orchestrator) pick(n int) int {
	o.rngMu.Lock()
	defer o.rngMu.Unlock()
	return o.rng.Intn(n)
}
