package onboarding

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dishuflix/internal/clock/fakeclock"
	"dishuflix/internal/config"
	"dishuflix/internal/errors"
)

type fakeProfile struct {
	name    string
	paid    bool
	failSet bool
}

func (p *fakeProfile) DisplayName() (string, bool) { return p.name, p.name != "" }
func (p *fakeProfile) PaymentComplete() bool       { return p.paid }

func (p *fakeProfile) SetDisplayName(name string) error {
	if p.failSet {
		return fmt.Errorf("quota exceeded")
	}
	p.name = name
	return nil
}

func (p *fakeProfile) MarkPaymentComplete() error {
	if p.failSet {
		return fmt.Errorf("quota exceeded")
	}
	p.paid = true
	return nil
}

func newGate(t *testing.T, p *fakeProfile) (*Gate, *fakeclock.Clock) {
	t.Helper()
	fc := fakeclock.New()
	g, err := New(p, config.Default().Onboarding, fc, zerolog.Nop())
	require.NoError(t, err)
	return g, fc
}

func TestNew_InitialState(t *testing.T) {
	tests := []struct {
		name    string
		profile fakeProfile
		want    State
	}{
		{"fresh", fakeProfile{}, InvitePending},
		{"name without payment", fakeProfile{name: "Asha"}, PaymentPending},
		{"payment flag without name", fakeProfile{paid: true}, InvitePending},
		{"name and payment", fakeProfile{name: "Raj", paid: true}, Unlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.profile
			g, _ := newGate(t, &p)
			assert.Equal(t, tt.want, g.State())
		})
	}
}

func TestNew_RejectsBadPattern(t *testing.T) {
	cfg := config.Default().Onboarding
	cfg.Pattern = "LLDLLń"
	_, err := New(&fakeProfile{}, cfg, fakeclock.New(), zerolog.Nop())
	assert.Error(t, err)
}

func TestSubmitInviteCode_AcceptsOnlyExactCode(t *testing.T) {
	tests := []struct {
		code string
		want InviteResult
	}{
		{"DI5HU3", InviteAccepted},
		{"di5hu3", InviteAccepted},
		{"Di5hU3", InviteAccepted},
		{"DI5HU4", InviteRejected},
		{"AB1CD2", InviteRejected},
		{"DI5HU", InviteIncomplete},
		{"", InviteIncomplete},
		{"DI5HU3XYZ", InviteAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			g, _ := newGate(t, &fakeProfile{})
			res, err := g.SubmitInviteCode(tt.code)
			assert.Equal(t, tt.want, res)

			switch tt.want {
			case InviteAccepted:
				require.NoError(t, err)
				assert.Equal(t, NamePending, g.State())
			case InviteRejected:
				assert.ErrorIs(t, err, errors.ErrValidation)
				assert.Equal(t, InvitePending, g.State())
			default:
				require.NoError(t, err)
				assert.Equal(t, InvitePending, g.State())
			}
		})
	}
}

func TestEnterInviteChar_RejectsWrongClassWithoutMutation(t *testing.T) {
	g, _ := newGate(t, &fakeProfile{})

	_, err := g.EnterInviteChar(0, 'D')
	require.NoError(t, err)
	before := g.Invite()

	// position 2 is digit-only, position 1 letter-only
	for _, in := range []struct {
		pos int
		ch  rune
	}{{2, 'X'}, {1, '7'}, {0, '#'}, {5, 'q'}} {
		_, err := g.EnterInviteChar(in.pos, in.ch)
		require.ErrorIs(t, err, errors.ErrValidation)

		var de *errors.Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, in.pos, de.Details.(InviteCharError).Position)
		assert.Equal(t, before, g.Invite(), "buffer unchanged")
	}

	sig, ok := g.Signal()
	require.True(t, ok)
	assert.Equal(t, Signal{Kind: SignalInvalidChar, Position: 5}, sig)
}

func TestEnterInviteChar_ValidatesOnlyWhenFull(t *testing.T) {
	g, _ := newGate(t, &fakeProfile{})

	for i, ch := range "DI5HU" {
		res, err := g.EnterInviteChar(i, ch)
		require.NoError(t, err)
		assert.Equal(t, InviteIncomplete, res)
	}
	assert.Equal(t, InvitePending, g.State())

	res, err := g.EnterInviteChar(5, '3')
	require.NoError(t, err)
	assert.Equal(t, InviteAccepted, res)
	assert.Equal(t, NamePending, g.State())
}

func TestEnterInviteChar_OutOfRange(t *testing.T) {
	g, _ := newGate(t, &fakeProfile{})
	_, err := g.EnterInviteChar(6, 'A')
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestMismatch_KeepsBufferAndAllowsRetry(t *testing.T) {
	g, _ := newGate(t, &fakeProfile{})

	res, err := g.SubmitInviteCode("AB1CD2")
	assert.Equal(t, InviteRejected, res)
	assert.Error(t, err)
	assert.Equal(t, []string{"A", "B", "1", "C", "D", "2"}, g.Invite(), "buffer not cleared automatically")

	sig, ok := g.Signal()
	require.True(t, ok)
	assert.Equal(t, SignalShake, sig.Kind)

	require.NoError(t, g.ClearInvite())
	assert.Equal(t, []string{"", "", "", "", "", ""}, g.Invite())

	res, err = g.SubmitInviteCode("DI5HU3")
	require.NoError(t, err)
	assert.Equal(t, InviteAccepted, res)
}

func TestSubmitInviteCode_StopsAtFirstInvalidChar(t *testing.T) {
	g, _ := newGate(t, &fakeProfile{})

	res, err := g.SubmitInviteCode("DIXHU3")
	assert.Equal(t, InviteIncomplete, res)
	require.ErrorIs(t, err, errors.ErrValidation)
	assert.Equal(t, []string{"D", "I", "", "", "", ""}, g.Invite())
}

func TestClearInviteChar(t *testing.T) {
	g, _ := newGate(t, &fakeProfile{})
	_, err := g.SubmitInviteCode("DI5")
	require.NoError(t, err)

	require.NoError(t, g.ClearInviteChar(2))
	assert.Equal(t, []string{"D", "I", "", "", "", ""}, g.Invite())
	assert.Error(t, g.ClearInviteChar(-1))
}

func TestSignal_Expires(t *testing.T) {
	g, fc := newGate(t, &fakeProfile{})

	_, _ = g.EnterInviteChar(2, 'Z')
	_, ok := g.Signal()
	require.True(t, ok)

	fc.Advance(499 * time.Millisecond)
	_, ok = g.Signal()
	assert.True(t, ok)

	// a newer signal restarts the window
	_, _ = g.EnterInviteChar(0, '1')
	fc.Advance(100 * time.Millisecond)
	sig, ok := g.Signal()
	require.True(t, ok)
	assert.Equal(t, 0, sig.Position)

	fc.Advance(400 * time.Millisecond)
	_, ok = g.Signal()
	assert.False(t, ok)
}

func TestSubmitName_KeepsFirstToken(t *testing.T) {
	p := &fakeProfile{}
	g, _ := newGate(t, p)
	_, err := g.SubmitInviteCode("DI5HU3")
	require.NoError(t, err)

	assert.ErrorIs(t, g.SubmitName("   "), errors.ErrValidation)
	assert.Equal(t, NamePending, g.State())

	require.NoError(t, g.SubmitName("  Asha Verma "))
	assert.Equal(t, "Asha", g.DisplayName())
	assert.Equal(t, "Asha", p.name)
	assert.Equal(t, PaymentPending, g.State())
}

func TestSubmitName_StorageFailureStillAdvances(t *testing.T) {
	p := &fakeProfile{failSet: true}
	g, _ := newGate(t, p)
	_, err := g.SubmitInviteCode("DI5HU3")
	require.NoError(t, err)

	require.NoError(t, g.SubmitName("Asha"))
	assert.Equal(t, PaymentPending, g.State())
	assert.Equal(t, "Asha", g.DisplayName())
}

func TestPayment_FailureAndCancelAreRetryable(t *testing.T) {
	p := &fakeProfile{name: "Asha"}
	g, _ := newGate(t, p)

	for i := 0; i < 3; i++ {
		require.NoError(t, g.BeginPayment())
		assert.Equal(t, PaymentProcessing, g.PaymentPhase())
		assert.ErrorIs(t, g.BeginPayment(), errors.ErrConflict)

		require.NoError(t, g.ReportPaymentResult(OutcomeFailure))
		assert.Equal(t, PaymentPending, g.State())
		assert.Equal(t, PaymentFailed, g.PaymentPhase())

		require.NoError(t, g.ReportPaymentResult(OutcomeCancelled))
		assert.Equal(t, PaymentIdle, g.PaymentPhase())
	}
	assert.False(t, p.paid)

	require.NoError(t, g.ReportPaymentResult(OutcomeSuccess))
	assert.Equal(t, Unlocked, g.State())
	assert.True(t, p.paid)
}

func TestUnlocked_IsTerminal(t *testing.T) {
	g, _ := newGate(t, &fakeProfile{name: "Raj", paid: true})

	_, err := g.SubmitInviteCode("DI5HU3")
	assert.ErrorIs(t, err, errors.ErrConflict)
	assert.ErrorIs(t, g.SubmitName("Someone"), errors.ErrConflict)
	assert.ErrorIs(t, g.ReportPaymentResult(OutcomeFailure), errors.ErrConflict)
	assert.Equal(t, Unlocked, g.State())
}

func TestOutOfOrderCalls(t *testing.T) {
	g, _ := newGate(t, &fakeProfile{})

	assert.ErrorIs(t, g.SubmitName("Asha"), errors.ErrConflict)
	assert.ErrorIs(t, g.ReportPaymentResult(OutcomeSuccess), errors.ErrConflict)
	assert.Equal(t, InvitePending, g.State())
}

func TestParseOutcome(t *testing.T) {
	o, err := ParseOutcome("cancelled")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, o)

	_, err = ParseOutcome("refunded")
	assert.ErrorIs(t, err, errors.ErrValidation)
}
