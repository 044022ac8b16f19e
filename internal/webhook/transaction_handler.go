package webhook

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cassiomorais/checkout-bridge/internal/domain/outbox"
	"github.com/cassiomorais/checkout-bridge/internal/domain/txinfo"
	"github.com/cassiomorais/checkout-bridge/internal/gateway"
	"github.com/rs/zerolog"
)

// ListenerTransaction is the technical name the remote gateway uses for
// transaction state change listeners.
const ListenerTransaction = "transaction"

// TransactionReader reads a transaction back from the remote system.
type TransactionReader interface {
	Read(ctx context.Context, spaceID, transactionID int64) (*gateway.Transaction, error)
}

// TxManager runs local mutations atomically.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransactionHandler refreshes the local transaction snapshot when the remote
// transaction changes state. The snapshot update and the outbox event commit
// together.
type TransactionHandler struct {
	reader    TransactionReader
	infos     txinfo.Repository
	outbox    outbox.Repository
	txManager TxManager
	logger    zerolog.Logger
}

func NewTransactionHandler(
	reader TransactionReader,
	infos txinfo.Repository,
	outboxRepo outbox.Repository,
	txManager TxManager,
	logger zerolog.Logger,
) *TransactionHandler {
	return &TransactionHandler{
		reader:    reader,
		infos:     infos,
		outbox:    outboxRepo,
		txManager: txManager,
		logger:    logger,
	}
}

func (h *TransactionHandler) Handle(ctx context.Context, req *Request) error {
	t, err := h.reader.Read(ctx, req.SpaceID, req.EntityID)
	if err != nil {
		return fmt.Errorf("read transaction %d: %w", req.EntityID, err)
	}

	spaceID := t.LinkedSpaceID
	if spaceID <= 0 {
		spaceID = req.SpaceID
	}

	// Scope fields stay nil here; the upsert preserves whatever scope the
	// reconciler recorded earlier.
	info := txinfo.New(t.ID, spaceID, string(t.State), t.Currency)
	info.AuthorizationAmount = t.AuthorizationAmount

	entry := outbox.NewEntry("transaction", strconv.FormatInt(t.ID, 10), "transaction.state-changed", map[string]any{
		"transactionId": t.ID,
		"spaceId":       spaceID,
		"state":         string(t.State),
		"eventId":       req.EventID,
	})

	err = h.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := h.infos.UpsertByTransaction(txCtx, info); err != nil {
			return fmt.Errorf("upsert transaction info: %w", err)
		}
		if err := h.outbox.Insert(txCtx, entry); err != nil {
			return fmt.Errorf("insert outbox entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.logger.Info().
		Int64("transaction_id", t.ID).
		Str("state", string(t.State)).
		Msg("transaction state synchronized")
	return nil
}

var _ Handler = (*TransactionHandler)(nil)
