package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajcreationz/livesite/internal/domain/errs"
	"github.com/rajcreationz/livesite/internal/infrastructure/assist"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
)

type fakeDrafter struct {
	req assist.Request
	err error
}

func (d *fakeDrafter) Draft(_ context.Context, req assist.Request) (assist.Result, error) {
	d.req = req
	if d.err != nil {
		return assist.Result{}, d.err
	}
	return assist.Result{Text: "A joyful evening of music.", TokensEstimated: 120}, nil
}

type fakeLedger struct {
	used     int
	recorded []int
}

func (l *fakeLedger) Record(_ context.Context, tokens int) error {
	l.recorded = append(l.recorded, tokens)
	l.used += tokens
	return nil
}

func (l *fakeLedger) UsedSince(context.Context, time.Time) (int, error) {
	return l.used, nil
}

func TestDraftDescription(t *testing.T) {
	ctx := context.Background()
	drafter := &fakeDrafter{}
	ledger := &fakeLedger{}
	svc := NewAssistService(drafter, ledger, 1000, logging.NewDiscardLogger())

	_, err := svc.DraftDescription(ctx, " ", "")
	assert.True(t, errs.IsValidation(err))

	res, err := svc.DraftDescription(ctx, "Holi Special", "colours and folk songs")
	require.NoError(t, err)
	assert.Equal(t, "A joyful evening of music.", res.Text)
	assert.Contains(t, drafter.req.InputText, "Title: Holi Special")
	assert.Contains(t, drafter.req.InputText, "Notes: colours and folk songs")
	assert.Equal(t, []int{120}, ledger.recorded)
}

func TestDraftDescription_Budget(t *testing.T) {
	ledger := &fakeLedger{used: 5000}
	svc := NewAssistService(&fakeDrafter{}, ledger, 1000, logging.NewDiscardLogger())
	_, err := svc.DraftDescription(context.Background(), "Show", "")
	assert.ErrorIs(t, err, ErrTokenBudget)
}

func TestDraftDescription_Unavailable(t *testing.T) {
	svc := NewAssistService(nil, nil, 0, logging.NewDiscardLogger())
	_, err := svc.DraftDescription(context.Background(), "Show", "")
	assert.ErrorIs(t, err, errs.ErrUnavailable)

	svc = NewAssistService(&fakeDrafter{err: errors.New("upstream 500")}, nil, 0, logging.NewDiscardLogger())
	_, err = svc.DraftDescription(context.Background(), "Show", "")
	assert.True(t, errs.IsRemote(err))
}
