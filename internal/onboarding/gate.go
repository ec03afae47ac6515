// Package onboarding implements the access gate: invite code, then display
// name, then payment. The gate only moves forward; Unlocked is terminal.
package onboarding

import (
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"dishuflix/internal/clock"
	"dishuflix/internal/config"
	"dishuflix/internal/errors"
	"dishuflix/internal/metrics"
)

// Profile is the slice of persisted user state the gate reads and writes.
type Profile interface {
	DisplayName() (string, bool)
	SetDisplayName(name string) error
	PaymentComplete() bool
	MarkPaymentComplete() error
}

type Gate struct {
	profile        Profile
	clock          clock.Clock
	logger         zerolog.Logger
	code           string
	classes        []CharClass
	signalDuration time.Duration

	mu          sync.Mutex
	state       State
	payment     PaymentPhase
	buffer      []rune // 0 marks an empty position
	name        string
	signal      *Signal
	signalTimer clock.Timer
	signalGen   uint64
}

// New resolves the starting state from the stored profile: no name means the
// invite step, a name without the payment flag means the payment step,
// otherwise the gate starts unlocked.
func New(profile Profile, cfg config.OnboardingConfig, clk clock.Clock, logger zerolog.Logger) (*Gate, error) {
	classes, err := ParsePattern(cfg.Pattern)
	if err != nil {
		return nil, err
	}
	if len(classes) != len(cfg.InviteCode) {
		return nil, errors.Validationf("invite code must have %d characters", len(classes))
	}

	g := &Gate{
		profile:        profile,
		clock:          clk,
		logger:         logger.With().Str("component", "onboarding").Logger(),
		code:           strings.ToUpper(cfg.InviteCode),
		classes:        classes,
		signalDuration: cfg.SignalDuration,
		payment:        PaymentIdle,
		buffer:         make([]rune, len(classes)),
	}

	name, hasName := profile.DisplayName()
	switch {
	case !hasName:
		g.state = InvitePending
	case !profile.PaymentComplete():
		g.state = PaymentPending
		g.name = name
	default:
		g.state = Unlocked
		g.name = name
	}

	g.logger.Info().Str("state", string(g.state)).Msg("onboarding gate initialized")
	return g, nil
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gate) Unlocked() bool {
	return g.State() == Unlocked
}

func (g *Gate) PaymentPhase() PaymentPhase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.payment
}

// DisplayName returns the captured name, empty before the name step.
func (g *Gate) DisplayName() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.name
}

// Invite returns the buffer contents, one string per position ("" if empty).
func (g *Gate) Invite() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]string, len(g.buffer))
	for i, r := range g.buffer {
		if r != 0 {
			out[i] = string(r)
		}
	}
	return out
}

// Width returns the number of invite positions.
func (g *Gate) Width() int {
	return len(g.classes)
}

// Signal returns the active transient signal, if any.
func (g *Gate) Signal() (Signal, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.signal == nil {
		return Signal{}, false
	}
	return *g.signal, true
}

// EnterInviteChar places ch at pos. A character outside the position's class
// leaves the buffer untouched. Once every position is filled the code is
// checked.
func (g *Gate) EnterInviteChar(pos int, ch rune) (InviteResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.require(InvitePending); err != nil {
		return "", err
	}
	if pos < 0 || pos >= len(g.buffer) {
		return "", errors.Validationf("invite position %d out of range", pos)
	}
	if err := g.put(pos, ch); err != nil {
		return InviteIncomplete, err
	}
	return g.check()
}

// ClearInviteChar empties one position.
func (g *Gate) ClearInviteChar(pos int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.require(InvitePending); err != nil {
		return err
	}
	if pos < 0 || pos >= len(g.buffer) {
		return errors.Validationf("invite position %d out of range", pos)
	}
	g.buffer[pos] = 0
	return nil
}

// ClearInvite empties the whole buffer.
func (g *Gate) ClearInvite() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.require(InvitePending); err != nil {
		return err
	}
	clear(g.buffer)
	return nil
}

// SubmitInviteCode fills positions from the start with the characters of
// code, stopping at the first one its position rejects. Characters beyond the
// buffer width are ignored.
func (g *Gate) SubmitInviteCode(code string) (InviteResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.require(InvitePending); err != nil {
		return "", err
	}

	pos := 0
	for _, ch := range code {
		if pos == len(g.buffer) {
			break
		}
		if err := g.put(pos, ch); err != nil {
			return InviteIncomplete, err
		}
		pos++
	}
	return g.check()
}

// put validates and stores one character. Callers hold g.mu.
func (g *Gate) put(pos int, ch rune) error {
	ch = unicode.ToUpper(ch)
	class := g.classes[pos]
	if !class.accepts(ch) {
		metrics.InviteRejections.WithLabelValues("invalid_char").Inc()
		g.raise(Signal{Kind: SignalInvalidChar, Position: pos})
		return errors.ValidationWithDetails("invalid invite character",
			InviteCharError{Position: pos, Expected: class.String()})
	}
	g.buffer[pos] = ch
	return nil
}

// check compares a full buffer against the code. Callers hold g.mu.
func (g *Gate) check() (InviteResult, error) {
	for _, r := range g.buffer {
		if r == 0 {
			return InviteIncomplete, nil
		}
	}

	if !strings.EqualFold(string(g.buffer), g.code) {
		metrics.InviteRejections.WithLabelValues("mismatch").Inc()
		g.raise(Signal{Kind: SignalShake, Position: -1})
		g.logger.Info().Msg("invite code rejected")
		return InviteRejected, errors.Validation("invalid invite code")
	}

	g.transition(NamePending)
	return InviteAccepted, nil
}

// SubmitName keeps the first whitespace-separated token of name as the
// display name.
func (g *Gate) SubmitName(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.require(NamePending); err != nil {
		return err
	}

	fields := strings.Fields(name)
	if len(fields) == 0 {
		return errors.Validation("name must not be empty")
	}
	first := fields[0]

	if err := g.profile.SetDisplayName(first); err != nil {
		g.logger.Warn().Err(err).Msg("display name not persisted, continuing in memory")
	}
	g.name = first
	g.transition(PaymentPending)
	return nil
}

// BeginPayment marks a checkout as in flight.
func (g *Gate) BeginPayment() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.require(PaymentPending); err != nil {
		return err
	}
	if g.payment == PaymentProcessing {
		return errors.Conflictf("payment already in progress")
	}
	g.payment = PaymentProcessing
	return nil
}

// ReportPaymentResult applies the payment surface's outcome. Failure and
// cancellation keep the gate at PaymentPending; retries are unlimited.
func (g *Gate) ReportPaymentResult(outcome Outcome) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.require(PaymentPending); err != nil {
		return err
	}

	switch outcome {
	case OutcomeSuccess:
		if err := g.profile.MarkPaymentComplete(); err != nil {
			g.logger.Warn().Err(err).Msg("payment flag not persisted, continuing in memory")
		}
		g.payment = PaymentIdle
		g.transition(Unlocked)
	case OutcomeFailure:
		g.payment = PaymentFailed
		g.logger.Info().Msg("payment failed, retry allowed")
	case OutcomeCancelled:
		g.payment = PaymentIdle
		g.logger.Info().Msg("payment cancelled")
	default:
		return errors.Validationf("unknown payment outcome %q", outcome)
	}
	return nil
}

func (g *Gate) require(want State) error {
	if g.state != want {
		return errors.Conflictf("onboarding is %s, not %s", g.state, want)
	}
	return nil
}

func (g *Gate) transition(to State) {
	from := g.state
	g.state = to
	metrics.OnboardingTransitions.WithLabelValues(string(from), string(to)).Inc()
	g.logger.Info().Str("from", string(from)).Str("to", string(to)).Msg("onboarding transition")
}

// raise replaces the current signal and schedules its expiry. Callers hold g.mu.
func (g *Gate) raise(sig Signal) {
	if g.signalTimer != nil {
		g.signalTimer.Stop()
	}
	g.signalGen++
	gen := g.signalGen
	g.signal = &sig

	g.signalTimer = g.clock.AfterFunc(g.signalDuration, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.signalGen == gen {
			g.signal = nil
			g.signalTimer = nil
		}
	})
}

// Close stops the pending signal timer.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.signalTimer != nil {
		g.signalTimer.Stop()
		g.signalTimer = nil
	}
}
