package intent

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3vault/internal/aa"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SmartAccount builds and submits user operations for the connected owner.
type SmartAccount interface {
	Address(ctx context.Context) (common.Address, error)
	BuildOperation(ctx context.Context, calls []aa.Call) (*aa.UserOperation, error)
	SubmitOperation(ctx context.Context, op *aa.UserOperation) (aa.Pending, error)
}

// Paymaster returns sponsorship data for an unsigned user operation.
type Paymaster interface {
	Sponsor(ctx context.Context, op *aa.UserOperation, mode aa.PaymasterMode) (*aa.Sponsorship, error)
}

// Refresher re-reads balances after a settled action.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Notifier shows short status messages to the user.
type Notifier interface {
	Info(msg string)
	Success(msg string)
	Error(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Info(string)    {}
func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

// Builder encodes actions and drives them to settlement. A Builder holds no
// per-action state, so one value may serve concurrent actions.
type Builder struct {
	encoder   *Encoder
	account   SmartAccount
	paymaster Paymaster
	mode      aa.PaymasterMode
	refresher Refresher
	notifier  Notifier
	onState   func(Transition)
	log       *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithPaymasterMode selects the sponsorship mode. Default SPONSORED.
func WithPaymasterMode(m aa.PaymasterMode) Option { return func(b *Builder) { b.mode = m } }

// WithRefresher sets the collaborator called once after each settled action.
func WithRefresher(r Refresher) Option { return func(b *Builder) { b.refresher = r } }

func WithNotifier(n Notifier) Option { return func(b *Builder) { b.notifier = n } }

// WithStateHook registers fn to observe every state transition.
// fn is called synchronously from the submitting goroutine.
func WithStateHook(fn func(Transition)) Option { return func(b *Builder) { b.onState = fn } }

func WithLogger(l *zap.Logger) Option { return func(b *Builder) { b.log = l } }

// NewBuilder wires the collaborators. encoder, account and paymaster are required.
func NewBuilder(encoder *Encoder, account SmartAccount, paymaster Paymaster, opts ...Option) *Builder {
	b := &Builder{
		encoder:   encoder,
		account:   account,
		paymaster: paymaster,
		mode:      aa.PaymasterModeSponsored,
		notifier:  nopNotifier{},
		log:       zap.NewNop(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Encode builds the intent for req without touching the network.
func (b *Builder) Encode(req ActionRequest) (*Intent, error) {
	return b.encoder.Encode(req)
}

// Submit drives an already-encoded intent through sponsorship, submission
// and settlement. It neither notifies nor refreshes.
func (b *Builder) Submit(ctx context.Context, in *Intent) (*Result, error) {
	var kind ActionKind
	if in != nil {
		kind = in.Action
	}
	r := b.newRun(kind)
	r.advance(Building, "")
	return b.submit(ctx, r, in)
}

// Execute encodes req, submits it and reports progress through the notifier.
// On settlement the refresher is called exactly once; a refresh failure is
// logged and does not change the result.
func (b *Builder) Execute(ctx context.Context, req ActionRequest) (*Result, error) {
	r := b.newRun(req.Kind)
	b.notifier.Info(progressMessage(req.Kind))
	r.advance(Building, "")

	in, err := b.encoder.Encode(req)
	if err != nil {
		err = r.fail(StageBuild, common.Hash{}, err)
		b.notifier.Error("Error occurred: " + err.Error())
		return nil, err
	}
	res, err := b.submit(ctx, r, in)
	if err != nil {
		b.notifier.Error("Error occurred: " + err.Error())
		return nil, err
	}
	if ctx.Err() != nil {
		// Caller went away after settlement; leave balances alone.
		return res, nil
	}
	b.notifier.Success("Transaction Hash: " + res.OpHash.Hex())
	if b.refresher != nil {
		if err := b.refresher.Refresh(ctx); err != nil {
			r.log.Warn("balance refresh failed", zap.Error(err))
		} else {
			b.notifier.Success("Balance has been updated!")
		}
	}
	return res, nil
}

func (b *Builder) submit(ctx context.Context, r *run, in *Intent) (*Result, error) {
	if in == nil || len(in.Calls) == 0 {
		return nil, r.fail(StageBuild, common.Hash{}, ErrEmptyIntent)
	}
	r.log.Debug("building user operation", zap.Int("calls", len(in.Calls)))
	op, err := b.account.BuildOperation(ctx, in.accountCalls())
	if err != nil {
		return nil, r.fail(StageBuild, common.Hash{}, err)
	}

	r.advance(AwaitingSponsorship, "")
	sp, err := b.paymaster.Sponsor(ctx, op, b.mode)
	if err != nil {
		return nil, r.fail(StageSponsor, common.Hash{}, err)
	}
	if sp == nil {
		return nil, r.fail(StageSponsor, common.Hash{}, aa.ErrNotSponsored)
	}
	sp.Apply(op)

	pending, err := b.account.SubmitOperation(ctx, op)
	if err != nil {
		return nil, r.fail(StageSubmit, common.Hash{}, err)
	}
	hash := pending.Hash()
	r.log = r.log.With(zap.Stringer("user_op_hash", hash))
	r.advance(Submitted, "")

	receipt, err := pending.Wait(ctx)
	if err != nil {
		return nil, r.fail(StageSettle, hash, err)
	}
	if !receipt.Success {
		return nil, r.fail(StageSettle, hash, fmt.Errorf("%w: %s", ErrReverted, receipt.Reason))
	}
	r.advance(Settled, "")
	r.log.Info("action settled", zap.Stringer("tx_hash", receipt.Receipt.TransactionHash))
	return &Result{ActionID: r.id, Intent: in, OpHash: hash, Receipt: receipt}, nil
}

// run is the state machine of one action.
type run struct {
	id    string
	kind  ActionKind
	state State
	hook  func(Transition)
	log   *zap.Logger
}

func (b *Builder) newRun(kind ActionKind) *run {
	id := uuid.NewString()
	return &run{
		id:   id,
		kind: kind,
		hook: b.onState,
		log:  b.log.With(zap.String("action_id", id), zap.Stringer("action", kind)),
	}
}

func (r *run) advance(next State, stage Stage) {
	t := Transition{ActionID: r.id, Kind: r.kind, From: r.state, To: next, Stage: stage}
	r.state = next
	r.log.Debug("state", zap.Stringer("from", t.From), zap.Stringer("to", t.To))
	if r.hook != nil {
		r.hook(t)
	}
}

func (r *run) fail(stage Stage, hash common.Hash, err error) error {
	r.advance(Failed, stage)
	r.log.Debug("action failed", zap.String("stage", string(stage)), zap.Error(err))
	return &StageError{Stage: stage, OpHash: hash, Err: err}
}

func progressMessage(k ActionKind) string {
	if msg, ok := progress[k]; ok {
		return msg
	}
	return "Processing " + k.String() + " on the blockchain!"
}
