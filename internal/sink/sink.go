// Package sink delivers submitted training records to external destinations.
package sink

import (
	"context"
	"errors"

	"github.com/verte-zerg/wordtally/internal/model"
	"github.com/verte-zerg/wordtally/internal/session"
)

var (
	_ session.Sink = Discard{}
	_ session.Sink = Multi(nil)
	_ session.Sink = (*HTTP)(nil)
	_ session.Sink = (*AMQP)(nil)
)

// Discard drops every record.
type Discard struct{}

// SaveRecord implements session.Sink.
func (Discard) SaveRecord(context.Context, model.Record) error {
	return nil
}

// Multi fans a record out to every sink in order.
type Multi []session.Sink

// SaveRecord calls each sink and joins their errors. A failing sink does not stop the rest.
func (m Multi) SaveRecord(ctx context.Context, rec model.Record) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.SaveRecord(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
