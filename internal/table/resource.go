package table

import (
	"context"
	"fmt"

	"github.com/BinitGoswami/my-placement/internal/client"
	"github.com/BinitGoswami/my-placement/internal/events"
	"github.com/BinitGoswami/my-placement/internal/model"
)

// ForResource returns a controller listing res through cl. Fields of cfg
// that bind the controller to the backend are overwritten; the rest are
// kept.
func ForResource(cl client.ConsoleClient, res model.Resource, cfg Config[model.Record]) (*Controller[model.Record], error) {
	cfg.Fetch = func(ctx context.Context, p model.ListParams) (*model.ListResult[model.Record], error) {
		return cl.ListRecords(ctx, res, p)
	}
	cfg.Delete = func(ctx context.Context, id string) error {
		return cl.DeleteRecord(ctx, res, id)
	}
	cfg.Update = func(ctx context.Context, id string, payload map[string]any) (model.Record, error) {
		return cl.UpdateRecord(ctx, res, id, payload)
	}
	cfg.Create = func(ctx context.Context, payload map[string]any) (model.Record, error) {
		return cl.CreateRecord(ctx, res, payload)
	}
	cfg.IDOf = model.Record.ID
	cfg.Fields = func(r model.Record) map[string]any { return r }
	cfg.Resource = res.Name
	if cfg.Noun == "" {
		cfg.Noun = res.Noun
	}
	return New(cfg)
}

// Follow refreshes the list whenever another console reports a change to
// the controller's resource. It returns once subscribed; delivery stops when
// ctx is done or the controller is closed.
func (c *Controller[T]) Follow(ctx context.Context, sub events.Subscriber) error {
	if c.cfg.Resource == "" {
		return fmt.Errorf("table: Follow requires a Resource")
	}
	ch, cancel, err := sub.Subscribe(events.Topic(c.cfg.Resource))
	if err != nil {
		return fmt.Errorf("following %s: %w", c.cfg.Resource, err)
	}

	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.ctx.Done():
				return
			case data, ok := <-ch:
				if !ok {
					return
				}
				ev, err := events.DecodeRecordChanged(data)
				if err != nil {
					c.cfg.Logger.Warn("ignoring malformed record change", "error", err)
					continue
				}
				if ev.Origin != "" && ev.Origin == c.cfg.Origin {
					continue
				}
				c.cfg.Logger.Debug("refreshing after remote change",
					"resource", ev.Resource,
					"op", ev.Op,
					"id", ev.ID,
				)
				c.Refresh()
			}
		}
	}()
	return nil
}
