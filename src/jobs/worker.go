package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"Backend-FaceAttend/src/services/attendance"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const casAttempts = 3

// Refresher fuses an observation into the member's stored signature.
type Refresher struct {
	roster attendance.Roster
	log    *zap.Logger
}

func NewRefresher(roster attendance.Roster, log *zap.Logger) *Refresher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Refresher{roster: roster, log: log.Named("refresh")}
}

// Refresh reads the current signature, fuses and writes it back with a
// compare-and-set on the update counter, retrying a few times on contention.
// A NumericError or a vanished member is final and never retried.
func (r *Refresher) Refresh(ctx context.Context, job attendance.SignatureRefresh) error {
	for attempt := 1; attempt <= casAttempts; attempt++ {
		member, err := r.roster.Member(ctx, job.MemberID)
		if err != nil {
			if attendance.IsNotFound(err) {
				r.log.Warn("member gone, skipping refresh", zap.String("memberId", job.MemberID.Hex()))
				return nil
			}
			return &attendance.StorageError{Op: "refresh: load member", Err: err}
		}
		if len(member.Signature) != len(job.Observed) {
			r.log.Warn("signature dimension changed, skipping refresh",
				zap.String("memberId", job.MemberID.Hex()),
				zap.Int("stored", len(member.Signature)),
				zap.Int("observed", len(job.Observed)),
			)
			return nil
		}

		fused, err := attendance.Fuse(member.Signature, job.Observed, job.Weight)
		if err != nil {
			return err
		}

		err = r.roster.UpdateSignature(ctx, member.ID, fused, member.SignatureUpdates, job.ObservedAt)
		if err == nil {
			r.log.Debug("signature refreshed",
				zap.String("memberId", member.ID.Hex()),
				zap.Int("updates", member.SignatureUpdates+1),
			)
			return nil
		}
		if !errors.Is(err, attendance.ErrStaleSignature) {
			return &attendance.StorageError{Op: "refresh: update signature", Err: err}
		}
	}
	return &attendance.StorageError{Op: "refresh: update signature", Err: attendance.ErrStaleSignature}
}

// HandleRefreshSignatureTask adapts Refresh to asynq. Numeric failures skip retry.
func (r *Refresher) HandleRefreshSignatureTask(ctx context.Context, t *asynq.Task) error {
	var payload RefreshSignaturePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	job, err := payload.job()
	if err != nil {
		return fmt.Errorf("member id: %v: %w", err, asynq.SkipRetry)
	}

	err = r.Refresh(ctx, job)
	var numeric *attendance.NumericError
	if errors.As(err, &numeric) {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return err
}

// RegisterHandlers binds the refresh handler to its task type.
func RegisterHandlers(mux *asynq.ServeMux, r *Refresher) {
	mux.HandleFunc(TypeRefreshSignature, r.HandleRefreshSignatureTask)
}

// ErrorHandler reports failed background tasks; this is the only place their errors surface.
func ErrorHandler(log *zap.Logger) asynq.ErrorHandler {
	return asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		log.Error("background task failed",
			zap.String("type", task.Type()),
			zap.Int("retried", retried),
			zap.Int("maxRetry", maxRetry),
			zap.Error(err),
		)
	})
}
