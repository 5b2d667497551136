// Package events applies rule updates published on a NATS subject to
// a linkifier table.
//
// Payloads carry the complete definition list under the "linkifiers"
// key, in JSON or YAML. Every message replaces the table wholesale;
// there is no incremental diff protocol, so a lost message is healed
// by the next one.
package events

import (
	"bytes"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/linkify/pkg/errors"
	"github.com/arthur-debert/linkify/pkg/logging"
	"github.com/arthur-debert/linkify/pkg/rules"
	"github.com/arthur-debert/linkify/pkg/table"
)

// DefaultSubject is the subject rule updates are published on when
// the caller does not pick one.
const DefaultSubject = "linkify.rules"

// Config controls the subscriber connection.
type Config struct {
	// URL is the NATS server address. Empty means nats.DefaultURL.
	URL string

	// Subject carries full definition lists. Empty means
	// DefaultSubject.
	Subject string

	// Queue, when set, joins a queue group so that one subscriber per
	// group applies each update.
	Queue string
}

// Subscriber feeds published definition lists into a table.
type Subscriber struct {
	config Config
	table  *table.Table
	logger zerolog.Logger

	conn *nats.Conn
	sub  *nats.Subscription
}

// NewSubscriber creates a subscriber that applies updates to tbl. It
// does not connect; call Start.
func NewSubscriber(config Config, tbl *table.Table) *Subscriber {
	if config.URL == "" {
		config.URL = nats.DefaultURL
	}
	if config.Subject == "" {
		config.Subject = DefaultSubject
	}
	return &Subscriber{
		config: config,
		table:  tbl,
		logger: logging.GetLogger("events.subscriber"),
	}
}

// Start connects to the server and subscribes. Updates are applied
// from the connection's callback goroutine until Close is called.
func (s *Subscriber) Start() error {
	conn, err := nats.Connect(s.config.URL, nats.Name("linkify"))
	if err != nil {
		return errors.Wrap(err, errors.ErrEventStream, "failed to connect to NATS").
			WithDetail("url", s.config.URL)
	}

	var sub *nats.Subscription
	if s.config.Queue != "" {
		sub, err = conn.QueueSubscribe(s.config.Subject, s.config.Queue, s.Handle)
	} else {
		sub, err = conn.Subscribe(s.config.Subject, s.Handle)
	}
	if err != nil {
		conn.Close()
		return errors.Wrap(err, errors.ErrEventStream, "failed to subscribe").
			WithDetail("subject", s.config.Subject)
	}

	s.conn = conn
	s.sub = sub
	s.logger.Info().
		Str("url", s.config.URL).
		Str("subject", s.config.Subject).
		Msg("Subscribed to rule updates")
	return nil
}

// Close removes the subscription and closes the connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		if err := s.sub.Unsubscribe(); err != nil {
			s.logger.Debug().Err(err).Msg("Unsubscribe failed during shutdown")
		}
		s.sub = nil
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

// Handle applies a single published payload to the table. It is the
// subscription callback, split out so payload handling is testable
// without a running server. Undecodable payloads are dropped and the
// table keeps its current rules.
func (s *Subscriber) Handle(msg *nats.Msg) {
	defs, err := decode(msg.Data)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("subject", msg.Subject).
			Msg("Ignoring rule update that failed to decode")
		return
	}

	s.table.Update(defs)
	s.logger.Info().
		Str("subject", msg.Subject).
		Int("definitions", len(defs)).
		Msg("Applied published rule update")
}

// decode picks the payload format by its first byte: JSON objects
// start with '{', everything else is treated as YAML.
func decode(data []byte) ([]rules.Definition, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New(errors.ErrConfigParse, "empty rule update payload")
	}
	if trimmed[0] == '{' {
		return rules.ParseJSON(trimmed)
	}
	return rules.ParseYAML(trimmed)
}
