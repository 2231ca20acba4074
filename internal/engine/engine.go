// Package engine implements the controller: the single-turn orchestration
// loop tying together session memory, the intent classifier, the slot
// extractor, the planner, the tool executors, and the response composer.
// Tool collaborators are injected, the turn deadline is threaded through
// every call, and panics are recovered at the top so no failure reaches
// the transport layer unshaped.
package engine

import (
	"context"
	"fmt"
	"time"

	"zuscore/internal/calculator"
	"zuscore/internal/catalog"
	"zuscore/internal/classifier"
	"zuscore/internal/composer"
	"zuscore/internal/domain"
	"zuscore/internal/outlets"
	"zuscore/internal/planner"
	"zuscore/internal/session"
	"zuscore/internal/slots"
	"zuscore/platform/apperr"
	"zuscore/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentActions bounds how many of a turn's planned actions run at
// once. Multi-intent turns rarely produce more than two or three actions;
// the cap is a backstop, not a tuning knob.
const maxConcurrentActions = 4

// fallbackConfidence is the stable confidence reported whenever the
// Controller had to fall back after an aborted or panicking turn.
const fallbackConfidence = 0.0

const defaultTurnDeadline = 30 * time.Second
const defaultLastShownCap = 5

// Config is the subset of turn-processing configuration the engine needs.
type Config struct {
	TurnDeadline time.Duration
	HistoryCap   int
	EntityCap    int
	LastShownCap int
	// SSTRate overrides the calculator's default 6% sales-and-services tax
	// rate; zero means "use the calculator's default".
	SSTRate float64
}

// Result is the engine's external contract, mirrored by the transport
// layer's turn response.
type Result struct {
	Reply      string
	SessionID  string
	Intent     domain.Intent
	Confidence float64
}

// Engine wires every collaborator a turn touches.
type Engine struct {
	store      session.Store
	classifier *classifier.Classifier
	planner    *planner.Planner
	products   *catalog.Retriever
	outlets    *outlets.Engine
	cfg        Config
	log        *logger.Logger
	now        func() time.Time
}

// New wires an Engine from its collaborators.
func New(store session.Store, products *catalog.Retriever, outletEngine *outlets.Engine, cfg Config, log *logger.Logger) *Engine {
	if cfg.TurnDeadline <= 0 {
		cfg.TurnDeadline = defaultTurnDeadline
	}
	if cfg.LastShownCap <= 0 {
		cfg.LastShownCap = defaultLastShownCap
	}
	if cfg.SSTRate <= 0 {
		cfg.SSTRate = calculator.DefaultSSTRate
	}
	return &Engine{
		store:      store,
		classifier: classifier.New(),
		planner:    planner.New(),
		products:   products,
		outlets:    outletEngine,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

// WithClock overrides the engine's notion of "now", for deterministic tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Process runs one turn, start to finish.
// sessionID may be empty, in which case Process assigns a fresh uuid.
func (e *Engine) Process(ctx context.Context, sessionID, message string) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e.log != nil {
				e.log.ToolError(sessionID, "controller", fmt.Errorf("recovered panic: %v", r))
			}
			result = Result{
				Reply:      composer.ErrorReply(apperr.Internal("internal error")),
				SessionID:  sessionID,
				Intent:     domain.IntentUnclear,
				Confidence: fallbackConfidence,
			}
			err = nil
		}
	}()

	turnCtx, cancel := context.WithTimeout(ctx, e.cfg.TurnDeadline)
	defer cancel()

	now := e.now()

	// A session id is assigned on first turn if the caller did not supply
	// one; the response always carries it either way.
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	// Look up/create the session and append the user Turn. This write
	// always happens, even if the rest of the turn aborts, so the user
	// sees their own message on replay.
	snap, werr := e.store.WithSession(turnCtx, sessionID, func(s *domain.Session) error {
		s.AppendTurn(domain.Turn{Role: domain.RoleUser, Text: message, Timestamp: now}, e.cfg.HistoryCap)
		return nil
	})
	if werr != nil {
		return e.abort(sessionID, werr), nil
	}
	resolvedID := snap.ID

	plan, reply, intent, confidence, shown, toolErr := e.runTurn(turnCtx, message, snap)

	if turnCtx.Err() != nil {
		// Deadline expired before the composer ran: abort outstanding work
		// and roll back. The assistant Turn is not appended and
		// last_intent is not updated.
		return e.abort(resolvedID, turnCtx.Err()), nil
	}

	if toolErr != nil {
		reply = composer.ErrorReply(toolErr)
		intent = plan.Classification.Intent
		confidence = fallbackConfidence
	}

	recognised := intent.Recognized() && toolErr == nil

	_, werr = e.store.WithSession(ctx, resolvedID, func(s *domain.Session) error {
		s.AppendTurn(domain.Turn{
			Role:      domain.RoleAssistant,
			Text:      reply,
			Intent:    intent,
			Timestamp: e.now(),
		}, e.cfg.HistoryCap)

		if recognised {
			if plan.TopicSwitched {
				snapshot := s.Snapshot()
				s.SavedContext = &snapshot
			}
			s.LastIntent = intent
			if shown.products != nil {
				s.SetLastShownProducts(shown.products, e.cfg.LastShownCap)
			}
			if shown.outlets != nil {
				s.SetLastShownOutlets(shown.outlets, e.cfg.LastShownCap)
			}
			s.AppendContextEntities(shown.entities, e.cfg.EntityCap)
		}
		return nil
	})
	if werr != nil {
		if e.log != nil {
			e.log.ToolError(resolvedID, "session-memory", werr)
		}
	}

	if e.log != nil {
		e.log.TurnProcessed(resolvedID, string(intent), confidence, float64(time.Since(now).Milliseconds()), nil)
	}

	return Result{Reply: reply, SessionID: resolvedID, Intent: intent, Confidence: confidence}, nil
}

// shownEntities carries whatever a turn's tool executions surfaced, so the
// engine can update last_shown_products / last_shown_outlets /
// context_entities after composition.
type shownEntities struct {
	products []domain.Product
	outlets  []domain.Outlet
	entities []string
}

// runTurn performs the CPU-only classify/extract/plan steps and the
// (possibly blocking) tool execution, all within turnCtx's deadline.
func (e *Engine) runTurn(turnCtx context.Context, message string, snap domain.Session) (domain.Plan, string, domain.Intent, float64, shownEntities, error) {
	ranked := e.classifier.Rank(message, snap.LastIntent)
	extractedSlots := slots.Extract(message)

	sessCtx := planner.SessionContext{
		LastIntent:        snap.LastIntent,
		HasLastShown:      len(snap.LastShownProducts) > 0 || len(snap.LastShownOutlets) > 0,
		HasSavedContext:   snap.SavedContext != nil && planner.ReferencesEarlierContext(message),
		LastShownProducts: snap.LastShownProducts,
		LastShownOutlets:  snap.LastShownOutlets,
	}
	if sessCtx.HasLastShown {
		sessCtx.LastShownSummary = summariseLastShown(snap)
	}
	if snap.SavedContext != nil {
		sessCtx.SavedContextText = summariseSavedContext(*snap.SavedContext)
	}

	plan := e.planner.Plan(message, ranked, extractedSlots, sessCtx)

	shown := shownEntities{entities: slots.ContextEntities(extractedSlots)}

	// A multi-intent turn may dispatch several actions at once; they are
	// independent tool calls, so run them concurrently and recombine in
	// plan order.
	texts := make([]string, len(plan.Actions))
	outs := make([]shownEntities, len(plan.Actions))
	errs := make([]error, len(plan.Actions))

	g, gctx := errgroup.WithContext(turnCtx)
	g.SetLimit(maxConcurrentActions)
	for i, action := range plan.Actions {
		i, action := i, action
		g.Go(func() error {
			text, out, actErr := e.execute(gctx, action)
			texts[i], outs[i], errs[i] = text, out, actErr
			return nil
		})
	}
	_ = g.Wait()

	var fragments []string
	var lastErr error
	for i := range plan.Actions {
		if errs[i] != nil {
			lastErr = errs[i]
			continue
		}
		fragments = append(fragments, texts[i])
		if outs[i].products != nil {
			shown.products = outs[i].products
		}
		if outs[i].outlets != nil {
			shown.outlets = outs[i].outlets
		}
	}

	if lastErr != nil && len(fragments) == 0 {
		return plan, "", plan.Classification.Intent, fallbackConfidence, shown, lastErr
	}

	reply := composer.Join(fragments...)
	return plan, reply, plan.Classification.Intent, plan.Classification.Confidence, shown, nil
}

// execute runs one Action against its tool and composes the reply
// fragment.
func (e *Engine) execute(ctx context.Context, action domain.Action) (string, shownEntities, error) {
	switch action.Kind {
	case domain.ActionProvideAnswer, domain.ActionAskFollowup, domain.ActionRequestClarification, domain.ActionReject:
		return action.Text, shownEntities{}, nil

	case domain.ActionCallProductSearch:
		var results []domain.Product
		if action.RestrictProducts != nil {
			results = e.products.SearchWithin(action.RestrictProducts, action.Filters, action.K)
		} else {
			results = e.products.Search(ctx, action.Query, action.Filters, action.K)
		}
		return composer.Products(action.Query, results), shownEntities{products: results}, nil

	case domain.ActionCallOutletSearch:
		if action.Filters.CountQuery {
			var n int
			if action.RestrictOutlets != nil {
				n = e.outlets.CountWithin(action.RestrictOutlets, action.Filters)
			} else {
				n = e.outlets.Count(action.Filters)
			}
			return composer.Count(action.Filters, n), shownEntities{}, nil
		}
		if action.Filters.TimeQuery != domain.TimeQueryNone {
			if action.RestrictOutlets != nil {
				return e.outlets.AnswerWithin(action.RestrictOutlets, action.Filters), shownEntities{}, nil
			}
			return e.outlets.Answer(action.Filters), shownEntities{}, nil
		}
		var results []domain.Outlet
		if action.RestrictOutlets != nil {
			results = e.outlets.SearchWithin(action.RestrictOutlets, action.Filters, action.K)
		} else {
			results = e.outlets.Search(action.Query, action.Filters, action.K)
		}
		return composer.Outlets(action.Filters, results, e.now()), shownEntities{outlets: results}, nil

	case domain.ActionCallCalculator:
		calcResult, calcErr := calculator.EvaluateWithRate(action.Expression, e.cfg.SSTRate)
		if calcErr != nil {
			if apperr.Is(calcErr, apperr.KindNotACalculation) {
				return "That doesn't look like something I can calculate — could you rephrase it as a number or a percentage?", shownEntities{}, nil
			}
			return "", shownEntities{}, calcErr
		}
		return composer.Calculation(composer.CalcResult{
			Value:                calcResult.Value,
			NormalizedExpression: calcResult.NormalizedExpression,
			IsCurrency:           calcResult.IsCurrency,
			Text:                 calcResult.Text,
			Breakdown:            calcResult.Breakdown,
		}), shownEntities{}, nil

	default:
		return "", shownEntities{}, apperr.Internal("unrecognised action kind")
	}
}

func (e *Engine) abort(sessionID string, cause error) Result {
	if e.log != nil {
		e.log.ToolError(sessionID, "controller", cause)
	}
	return Result{
		Reply:      "I'm having trouble right now — please try again in a moment.",
		SessionID:  sessionID,
		Intent:     domain.IntentUnclear,
		Confidence: fallbackConfidence,
	}
}

func summariseLastShown(snap domain.Session) string {
	if len(snap.LastShownProducts) > 0 {
		return composer.Products("", snap.LastShownProducts)
	}
	return composer.Outlets(domain.Slots{}, snap.LastShownOutlets, time.Now())
}

func summariseSavedContext(snap domain.ContextSnapshot) string {
	if len(snap.LastShownProducts) > 0 {
		return composer.Products("", snap.LastShownProducts)
	}
	if len(snap.LastShownOutlets) > 0 {
		return composer.Outlets(domain.Slots{}, snap.LastShownOutlets, time.Now())
	}
	return "Earlier we were talking about " + string(snap.LastIntent) + "."
}
