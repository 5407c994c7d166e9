// Package notify delivers session failure notices to the people who follow
// them up.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/homeplay/internal/session"
)

// ZapSink writes failed submissions to a logger at error level so they
// can be picked up by whoever watches the logs.
type ZapSink struct {
	logger *zap.Logger
}

var _ session.NotificationSink = (*ZapSink)(nil)

// NewZapSink returns a sink writing to logger.
func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger.Named("notify")}
}

// SubmissionFailed records a result that needs manual reconciliation.
func (z *ZapSink) SubmissionFailed(_ context.Context, f session.Failure) {
	z.logger.Error("homework result not saved, needs follow-up",
		zap.String("homework_id", f.HomeworkID),
		zap.String("child_id", f.ChildID),
		zap.Int("score", f.Result.Score),
		zap.Int("total_questions", f.Result.TotalQuestions),
		zap.Int("percentage", f.Result.Percentage),
		zap.Any("answers", f.Result.Answers),
		zap.Error(f.Err))
}
