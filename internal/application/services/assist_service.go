package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rajcreationz/livesite/internal/domain/errs"
	"github.com/rajcreationz/livesite/internal/infrastructure/assist"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
)

// ErrTokenBudget is returned once the rolling daily token budget is spent.
var ErrTokenBudget = errors.New("Daily AI drafting budget exhausted, try again tomorrow")

const describePrompt = "Write a short, friendly description (2-3 sentences) for a live-streamed show listing. " +
	"Use plain text only, no markdown, no quotes."

// TokenLedger records drafting spend.
type TokenLedger interface {
	Record(ctx context.Context, tokens int) error
	UsedSince(ctx context.Context, since time.Time) (int, error)
}

// AssistService drafts descriptions for videos and events.
type AssistService struct {
	drafter     assist.Drafter
	ledger      TokenLedger
	dailyBudget int
	logger      *logging.ChanneledLogger
	now         func() time.Time
}

// NewAssistService accepts a nil drafter; DraftDescription then reports
// errs.ErrUnavailable.
func NewAssistService(drafter assist.Drafter, ledger TokenLedger, dailyBudget int, logger *logging.ChanneledLogger) *AssistService {
	return &AssistService{drafter: drafter, ledger: ledger, dailyBudget: dailyBudget, logger: logger, now: time.Now}
}

// DraftDescription asks the model for a description of the titled item.
// notes carries any extra context the admin typed.
func (s *AssistService) DraftDescription(ctx context.Context, title, notes string) (assist.Result, error) {
	if s.drafter == nil {
		return assist.Result{}, errs.ErrUnavailable
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return assist.Result{}, errs.Invalid("title", "is required")
	}

	if s.dailyBudget > 0 && s.ledger != nil {
		used, err := s.ledger.UsedSince(ctx, s.now().Add(-24*time.Hour))
		if err != nil {
			s.logger.Admin().Warn("Failed to read token usage", "error", err.Error())
		} else if used >= s.dailyBudget {
			return assist.Result{}, ErrTokenBudget
		}
	}

	input := "Title: " + title
	if notes = strings.TrimSpace(notes); notes != "" {
		input += "\nNotes: " + notes
	}

	result, err := s.drafter.Draft(ctx, assist.Request{Prompt: describePrompt, InputText: input, MaxTokens: 400})
	if err != nil {
		if errors.Is(err, assist.ErrNotConfigured) {
			return assist.Result{}, errs.ErrUnavailable
		}
		s.logger.Admin().Error("Description draft failed", "error", err.Error())
		return assist.Result{}, errs.Remote("draft_description", err)
	}

	if s.ledger != nil {
		if err := s.ledger.Record(ctx, result.TokensEstimated); err != nil {
			s.logger.Admin().Warn("Failed to record token usage", "error", err.Error())
		}
	}
	s.logger.Admin().Info("Description drafted", "tokens", result.TokensEstimated)
	return result, nil
}
