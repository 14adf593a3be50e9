// Package purge permanently removes users whose soft deletion is older than
// the retention window, together with their accounts and details.
//
// The reconciler keeps no state between runs: every run derives its work set
// from the cutoff. Each user is purged in its own transaction so a failure
// rolls back that user only and the batch moves on; the user is picked up
// again by the next run.
package purge

import (
	"context"
	"errors"
	"time"

	"account_system/internal/domain"
	"account_system/internal/metrics"
	"account_system/internal/queue"
	"account_system/internal/store"

	"github.com/sirupsen/logrus"
)

// DefaultThreshold is the retention window applied when none is configured.
const DefaultThreshold = 15 * 24 * time.Hour

// errNoLongerEligible marks a candidate restored or purged since selection.
var errNoLongerEligible = errors.New("no longer eligible for purge")

// Result summarises one run.
type Result struct {
	Cutoff        time.Time
	Candidates    int
	Purged        int
	Skipped       int
	Failed        int
	PurgedUserIDs []uint
}

// Reconciler runs purge batches.
type Reconciler struct {
	store     *store.Store
	publisher queue.Publisher
	onPurged  func(ctx context.Context, userIDs []uint)
	log       *logrus.Entry
	now       func() time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// WithPublisher sends a user.purged event for every purged user.
func WithPublisher(p queue.Publisher) Option {
	return func(r *Reconciler) { r.publisher = p }
}

// WithPurgedHook registers fn to run once per batch with the ids of the users
// it removed. It is not called when nothing was purged.
func WithPurgedHook(fn func(ctx context.Context, userIDs []uint)) Option {
	return func(r *Reconciler) { r.onPurged = fn }
}

// WithLogger replaces the standard logrus logger.
func WithLogger(l *logrus.Entry) Option {
	return func(r *Reconciler) { r.log = l }
}

// NewReconciler returns a Reconciler over st.
func NewReconciler(st *store.Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		store: st,
		log:   logrus.NewEntry(logrus.StandardLogger()),
		now:   time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// RunDays is Run with the threshold given in days.
func (r *Reconciler) RunDays(ctx context.Context, days int) (Result, error) {
	return r.Run(ctx, time.Duration(days)*24*time.Hour)
}

// Run purges every user soft-deleted before now-threshold. A non-positive
// threshold falls back to DefaultThreshold. The returned error is non-nil only
// when the candidates cannot be selected or ctx ends mid-batch; per-user
// failures are counted in Result.Failed.
func (r *Reconciler) Run(ctx context.Context, threshold time.Duration) (Result, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	res := Result{Cutoff: r.now().UTC().Add(-threshold)}
	log := r.log.WithField("cutoff", res.Cutoff.Format(time.RFC3339))

	candidates, err := r.store.ExpiredDetails(ctx, res.Cutoff)
	if err != nil {
		metrics.PurgeRunsTotal.WithLabelValues("error").Inc()
		log.WithError(err).Error("Purge: selecting candidates failed")
		return res, err
	}
	res.Candidates = len(candidates)

	defer r.purged(ctx, &res)
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			metrics.PurgeRunsTotal.WithLabelValues("aborted").Inc()
			log.WithField("purged", res.Purged).Warn("Purge: run aborted")
			return res, err
		}
		accounts, err := r.purgeUser(ctx, c.UserID, res.Cutoff)
		switch {
		case errors.Is(err, errNoLongerEligible):
			res.Skipped++
			log.WithField("user_id", c.UserID).Info("Purge: candidate no longer eligible")
		case err != nil:
			res.Failed++
			metrics.PurgeFailuresTotal.Inc()
			log.WithFields(logrus.Fields{
				"user_id": c.UserID,
				"error":   err.Error(),
			}).Error("Purge: user rolled back, retrying next run")
		default:
			res.Purged++
			res.PurgedUserIDs = append(res.PurgedUserIDs, c.UserID)
			metrics.UsersPurgedTotal.Inc()
			metrics.AccountsPurgedTotal.Add(float64(accounts))
			r.announce(ctx, c, accounts)
		}
	}

	metrics.PurgeRunsTotal.WithLabelValues("success").Inc()
	log.WithFields(logrus.Fields{
		"candidates": res.Candidates,
		"purged":     res.Purged,
		"skipped":    res.Skipped,
		"failed":     res.Failed,
	}).Info("Purge run completed")
	return res, nil
}

// purgeUser deletes the accounts, the identity record and the details of one
// user in a single transaction, after re-checking eligibility under a row lock.
func (r *Reconciler) purgeUser(ctx context.Context, userID uint, cutoff time.Time) (int64, error) {
	var accounts int64
	err := r.store.Transaction(ctx, func(tx *store.Store) error {
		d, err := tx.LockDetails(ctx, userID)
		if errors.Is(err, domain.ErrNotFound) {
			return errNoLongerEligible
		}
		if err != nil {
			return err
		}
		if !d.ExpiredBefore(cutoff) {
			return errNoLongerEligible
		}
		if accounts, err = tx.DeleteAccountsByOwner(ctx, userID); err != nil {
			return err
		}
		if err := tx.DeleteUser(ctx, userID); err != nil {
			return err
		}
		return tx.DeleteDetails(ctx, userID)
	})
	return accounts, err
}

// purged runs the hook after the batch, also when ctx ended part way through.
func (r *Reconciler) purged(ctx context.Context, res *Result) {
	if r.onPurged == nil || len(res.PurgedUserIDs) == 0 {
		return
	}
	r.onPurged(context.WithoutCancel(ctx), res.PurgedUserIDs)
}

func (r *Reconciler) announce(ctx context.Context, d domain.UserDetails, accounts int64) {
	if r.publisher == nil {
		return
	}
	ev := queue.UserPurgedEvent{
		UserID:          d.UserID,
		AccountsDeleted: accounts,
		PurgedAt:        r.now().UTC().Format(time.RFC3339),
	}
	if d.DeletedAt != nil {
		ev.DeletedAt = d.DeletedAt.Format(time.RFC3339)
	}
	// the purge is already committed; a lost event is logged by the publisher
	_ = r.publisher.Publish(ctx, queue.UserPurgedQueue, ev)
}
