// Package migration moves leftover local-mode data into the hosted backend,
// exactly once per authenticated identity.
//
// The flow is a small state machine:
//
//	NOT_CHECKED -> NO_LOCAL_DATA                        (nothing to move)
//	NOT_CHECKED -> PENDING_USER_DECISION                (prompt the user)
//	PENDING_USER_DECISION -> SKIPPED                    (marker set, terminal)
//	PENDING_USER_DECISION -> MIGRATING -> COMPLETED
//	                                   -> COMPLETED_WITH_ERRORS
//
// A run is best effort: each record is copied independently, a failure is
// recorded and the batch moves on. There is no rollback. Once a run finishes,
// local data is cleared and a per-identity marker guarantees the flow never
// re-triggers.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tallerhq/backoffice/internal/config"
	"github.com/tallerhq/backoffice/internal/metrics"
	"github.com/tallerhq/backoffice/internal/models"
	"github.com/tallerhq/backoffice/internal/storage"
)

// State identifies where the migration flow stands for one identity.
type State string

const (
	StateNotChecked          State = "not_checked"
	StateNoLocalData         State = "no_local_data"
	StatePendingDecision     State = "pending_user_decision"
	StateMigrating           State = "migrating"
	StateCompleted           State = "completed"
	StateCompletedWithErrors State = "completed_with_errors"
	StateSkipped             State = "skipped"
)

var (
	// ErrInFlight means a run for the same identity is already migrating.
	ErrInFlight = errors.New("migration already in progress for this user")

	// ErrAlreadyDone means the marker is set: the flow is settled for this
	// identity and must not run again.
	ErrAlreadyDone = errors.New("migration already completed for this user")
)

// LocalSource is the part of the local store the orchestrator reads from.
type LocalSource interface {
	ReadCollection(ctx context.Context, name string) ([]map[string]any, error)
	ClearCollection(ctx context.Context, name string) error
	MigrationShown(ctx context.Context, userID string) (bool, error)
	SetMigrationShown(ctx context.Context, userID string) error
}

// Target is the part of the persistence gateway the orchestrator writes to.
type Target interface {
	CreateOrder(ctx context.Context, o *models.ServiceOrder) error
	CreateCasualExpense(ctx context.Context, e *models.CasualExpense) error
	CreateBudgetExpense(ctx context.Context, e *models.BudgetExpense) error
	CreateLicense(ctx context.Context, l *models.License) error
	CreatePassword(ctx context.Context, p *models.PasswordEntry) error
	CreateServer(ctx context.Context, s *models.ServerCredential) error
}

// CheckResult is the outcome of the pre-migration check.
type CheckResult struct {
	State State `json:"state"`

	// Counts holds the number of local records per collection; Total is
	// their sum. Only populated when State is PENDING_USER_DECISION.
	Counts map[string]int `json:"counts,omitempty"`
	Total  int            `json:"total,omitempty"`
}

// Failure is the typed per-record failure variant: which record could not be
// copied and why. A record absent from Failures was migrated.
type Failure struct {
	Collection string `json:"collection"`
	Index      int    `json:"index"`
	Reason     string `json:"reason"`
}

// Result summarizes one migration run.
type Result struct {
	State    State     `json:"state"`
	Total    int       `json:"total"`
	Migrated int       `json:"migrated"`
	Failures []Failure `json:"failures,omitempty"`

	// Cleared reports whether the local collections were wiped.
	Cleared bool `json:"cleared"`

	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
}

// Orchestrator drives the one-time local-to-hosted migration. Construct with
// New; one instance serves all identities.
type Orchestrator struct {
	local   LocalSource
	target  Target
	cfg     config.Migration
	enabled bool
	metrics *metrics.Metrics
	log     *slog.Logger

	// mu guards states and the in-flight set. The invariant is at most one
	// MIGRATING run per identity.
	mu       sync.Mutex
	states   map[string]State
	inFlight map[string]bool
}

// New creates an orchestrator. enabled should be the backend detector's
// verdict: when false the orchestrator never activates, regardless of what
// local data exists.
func New(local LocalSource, target Target, cfg config.Migration, enabled bool, m *metrics.Metrics, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		local:    local,
		target:   target,
		cfg:      cfg,
		enabled:  enabled,
		metrics:  m,
		log:      log,
		states:   make(map[string]State),
		inFlight: make(map[string]bool),
	}
}

// StateFor returns the last known state for an identity.
func (o *Orchestrator) StateFor(userID string) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.states[userID]; ok {
		return s
	}
	return StateNotChecked
}

func (o *Orchestrator) setState(userID string, s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states[userID] = s
}

// Check evaluates whether the user should be prompted to migrate. It is
// called whenever the authenticated identity changes.
//
// It activates only when a backend is configured and the per-identity marker
// is unset. All six collections are read; if every one is empty the state is
// NO_LOCAL_DATA with no marker write, since re-checking on the next login is
// cheap and correct.
func (o *Orchestrator) Check(ctx context.Context, userID string) (*CheckResult, error) {
	if !o.enabled {
		return &CheckResult{State: StateNotChecked}, nil
	}

	shown, err := o.local.MigrationShown(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration marker: %w", err)
	}
	if shown {
		return &CheckResult{State: StateCompleted}, nil
	}

	counts := make(map[string]int, len(storage.Collections))
	total := 0
	for _, name := range storage.Collections {
		items, err := o.local.ReadCollection(ctx, name)
		if err != nil {
			// The one blocking failure: local storage itself is unreadable.
			// No state changes; the next login retries.
			return nil, fmt.Errorf("failed to read local collection %s: %w", name, err)
		}
		counts[name] = len(items)
		total += len(items)
	}

	if total == 0 {
		o.setState(userID, StateNoLocalData)
		return &CheckResult{State: StateNoLocalData}, nil
	}

	o.setState(userID, StatePendingDecision)
	return &CheckResult{State: StatePendingDecision, Counts: counts, Total: total}, nil
}

// Skip records the user's decision not to migrate. The marker is set so the
// prompt never repeats for this identity; local data stays where it is.
func (o *Orchestrator) Skip(ctx context.Context, userID string) error {
	if !o.enabled {
		return nil
	}
	if err := o.local.SetMigrationShown(ctx, userID); err != nil {
		return fmt.Errorf("failed to set migration marker: %w", err)
	}
	o.setState(userID, StateSkipped)
	o.log.Info("migration skipped by user", "user_id", userID)
	return nil
}

// Run performs the migration for one identity.
//
// Concurrency: a per-identity in-flight flag is checked and set atomically,
// so a second concurrent Run for the same user fails fast with ErrInFlight
// instead of double-copying.
//
// Failure semantics: per-record errors are collected, never fatal. The whole
// run is bounded by the configured timeout; on expiry the remaining records
// are recorded as failures and the run finishes as COMPLETED_WITH_ERRORS
// rather than hanging.
func (o *Orchestrator) Run(ctx context.Context, userID string) (*Result, error) {
	if !o.enabled {
		return nil, errors.New("no backend configured")
	}

	o.mu.Lock()
	if o.inFlight[userID] {
		o.mu.Unlock()
		return nil, ErrInFlight
	}
	o.inFlight[userID] = true
	o.states[userID] = StateMigrating
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		delete(o.inFlight, userID)
		o.mu.Unlock()
	}()

	shown, err := o.local.MigrationShown(ctx, userID)
	if err != nil {
		o.setState(userID, StateNotChecked)
		return nil, fmt.Errorf("failed to read migration marker: %w", err)
	}
	if shown {
		o.setState(userID, StateCompleted)
		return nil, ErrAlreadyDone
	}

	if o.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.RunTimeout)
		defer cancel()
	}

	result := &Result{Started: time.Now()}

	// Read everything up front: if local storage is unreadable the run
	// aborts before any backend write, marker untouched.
	collections := make(map[string][]map[string]any, len(storage.Collections))
	for _, name := range storage.Collections {
		items, err := o.local.ReadCollection(ctx, name)
		if err != nil {
			o.setState(userID, StateNotChecked)
			return nil, fmt.Errorf("failed to read local collection %s: %w", name, err)
		}
		collections[name] = items
		result.Total += len(items)
	}

	if result.Total == 0 {
		o.setState(userID, StateNoLocalData)
		result.State = StateNoLocalData
		result.Finished = time.Now()
		return result, nil
	}

	o.log.Info("migration started", "user_id", userID, "total", result.Total)

	for _, name := range storage.Collections {
		for i, raw := range collections[name] {
			if err := ctx.Err(); err != nil {
				result.Failures = append(result.Failures, Failure{
					Collection: name, Index: i, Reason: "run timeout exceeded",
				})
				continue
			}

			if err := o.migrateRecord(ctx, name, userID, raw); err != nil {
				o.log.Warn("record migration failed",
					"user_id", userID, "collection", name, "index", i, "error", err)
				result.Failures = append(result.Failures, Failure{
					Collection: name, Index: i, Reason: err.Error(),
				})
				o.metrics.FailedRecords.Inc()
				continue
			}
			result.Migrated++
			o.metrics.MigratedRecords.Inc()
		}
	}

	// Cleanup runs on a context detached from the run timeout: a run that
	// expired mid-copy must still clear and set the marker, or the next
	// login would re-migrate the records that already succeeded.
	if o.shouldClear(result.Migrated) {
		cleanupCtx := context.WithoutCancel(ctx)
		cleared := true
		for _, name := range storage.Collections {
			if err := o.local.ClearCollection(cleanupCtx, name); err != nil {
				o.log.Error("failed to clear local collection", "collection", name, "error", err)
				cleared = false
			}
		}
		result.Cleared = cleared

		// The marker is what makes the flow one-time. When the keep-on-
		// total-failure policy preserved the data, or a clear failed, leave
		// the marker unset too so the user can retry on the next login.
		if cleared {
			if err := o.local.SetMigrationShown(cleanupCtx, userID); err != nil {
				o.log.Error("failed to set migration marker", "user_id", userID, "error", err)
			}
		}
	}

	if len(result.Failures) == 0 {
		result.State = StateCompleted
	} else {
		result.State = StateCompletedWithErrors
	}
	o.setState(userID, result.State)
	o.metrics.MigrationRuns.WithLabelValues(string(result.State)).Inc()

	result.Finished = time.Now()
	o.log.Info("migration finished",
		"user_id", userID,
		"state", result.State,
		"migrated", result.Migrated,
		"total", result.Total,
		"cleared", result.Cleared,
		"duration", result.Finished.Sub(result.Started),
	)
	return result, nil
}

// shouldClear applies the configured clear policy. The original cleared
// local data after every attempted run; keep-on-total-failure preserves it
// when nothing at all was copied.
func (o *Orchestrator) shouldClear(migrated int) bool {
	if o.cfg.ClearPolicy == config.ClearKeepOnTotalFailure && migrated == 0 {
		return false
	}
	return true
}

// migrateRecord normalizes one raw local record and creates it through the
// gateway, bounded by the per-call timeout.
func (o *Orchestrator) migrateRecord(ctx context.Context, collection, userID string, raw map[string]any) error {
	if o.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.CallTimeout)
		defer cancel()
	}

	switch collection {
	case storage.CollectionOrders:
		order := normalizeOrder(raw, userID)
		return o.target.CreateOrder(ctx, order)
	case storage.CollectionCasualExpenses:
		e := normalizeCasualExpense(raw, userID)
		return o.target.CreateCasualExpense(ctx, e)
	case storage.CollectionBudgetExpenses:
		e := normalizeBudgetExpense(raw, userID)
		return o.target.CreateBudgetExpense(ctx, e)
	case storage.CollectionLicenses:
		l := normalizeLicense(raw, userID)
		return o.target.CreateLicense(ctx, l)
	case storage.CollectionPasswords:
		p := normalizePassword(raw, userID)
		return o.target.CreatePassword(ctx, p)
	case storage.CollectionServers:
		s := normalizeServer(raw, userID)
		return o.target.CreateServer(ctx, s)
	}
	return fmt.Errorf("unknown collection %q", collection)
}
