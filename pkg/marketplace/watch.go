package marketplace

import (
	"context"
	"errors"

	"solmarket/internal/ws"
	"solmarket/pkg/core"
)

// Watch subscribes to account changes under the program and emits a fresh
// marketplace snapshot after each change. Notification payloads are used
// only as a change signal; the snapshot itself always comes from a full
// rescan, so readers never see a partially applied update. The returned
// channels close when ctx is canceled.
func (c *Client) Watch(ctx context.Context) (<-chan *core.MarketplaceSnapshot, <-chan error, error) {
	op := core.OpSubscribe
	if c.config.WSEndpoint == "" {
		return nil, nil, core.NewError(core.ErrorTypeInvalidInput, core.ErrCodeInvalidConfig, op.String(),
			"websocket endpoint not configured")
	}

	pubsub := ws.New(ws.Config{
		URL:              c.config.WSEndpoint,
		ReconnectEnabled: true,
	}, c.logger)
	if err := pubsub.Connect(ctx); err != nil {
		return nil, nil, err
	}

	sub, err := pubsub.Subscribe(ctx, "programSubscribe", "programUnsubscribe", []any{
		c.config.ProgramID.String(),
		map[string]any{
			"commitment": c.config.Commitment.String(),
			"encoding":   "base64",
		},
	})
	if err != nil {
		pubsub.Close()
		return nil, nil, err
	}

	snapshots := make(chan *core.MarketplaceSnapshot, 1)
	errs := make(chan error, 1)

	go func() {
		defer close(snapshots)
		defer close(errs)
		defer pubsub.Close()

		// Seed subscribers with the current state before the first change.
		c.emitSnapshot(ctx, snapshots, errs)

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-sub.Notifications:
				if !ok {
					return
				}
				c.emitSnapshot(ctx, snapshots, errs)
			case err, ok := <-sub.Errs:
				if !ok {
					return
				}
				select {
				case errs <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return snapshots, errs, nil
}

// emitSnapshot rescans and delivers the result, dropping the oldest
// undelivered snapshot when the consumer lags. Superseded refreshes are
// silent: a newer snapshot already won.
func (c *Client) emitSnapshot(ctx context.Context, snapshots chan *core.MarketplaceSnapshot, errs chan error) {
	snapshot, err := c.RefreshSnapshot(ctx)
	if err != nil {
		if errors.Is(err, core.ErrSuperseded) {
			return
		}
		select {
		case errs <- err:
		case <-ctx.Done():
		}
		return
	}

	for {
		select {
		case snapshots <- snapshot:
			return
		case <-ctx.Done():
			return
		default:
			select {
			case <-snapshots:
			default:
			}
		}
	}
}
