package events_test

import (
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/linkify/pkg/events"
	"github.com/arthur-debert/linkify/pkg/rules"
	"github.com/arthur-debert/linkify/pkg/table"
	"github.com/arthur-debert/linkify/pkg/testutil"
)

func seededTable(t *testing.T, reporter table.Reporter) *table.Table {
	t.Helper()

	var opts []table.Option
	if reporter != nil {
		opts = append(opts, table.WithReporter(reporter))
	}
	tbl := table.New(opts...)
	tbl.Initialize([]rules.Definition{
		{Pattern: `#(?P<id>[0-9]+)`, URLTemplate: "https://example.com/issues/{id}"},
	})
	require.Equal(t, 1, tbl.Len())
	return tbl
}

func TestHandleJSONPayload(t *testing.T) {
	tbl := seededTable(t, nil)
	sub := events.NewSubscriber(events.Config{}, tbl)

	sub.Handle(&nats.Msg{
		Subject: events.DefaultSubject,
		Data: []byte(`{
			"linkifiers": [
				{"pattern": "T-(?P<num>[0-9]+)", "url_template": "https://tickets.example.com/{num}"},
				{"pattern": "CVE-(?P<id>[0-9]{4}-[0-9]+)", "url_template": "https://cve.example.com/{id}"}
			]
		}`),
	})

	entries := tbl.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "T-(?P<num>[0-9]+)", entries[0].Pattern)
	assert.Equal(t, "CVE-(?P<id>[0-9]{4}-[0-9]+)", entries[1].Pattern)
}

func TestHandleYAMLPayload(t *testing.T) {
	tbl := seededTable(t, nil)
	sub := events.NewSubscriber(events.Config{}, tbl)

	sub.Handle(&nats.Msg{
		Subject: events.DefaultSubject,
		Data: []byte(`linkifiers:
  - pattern: 'T-(?P<num>[0-9]+)'
    url_template: 'https://tickets.example.com/{num}'
`),
	})

	entries := tbl.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "T-(?P<num>[0-9]+)", entries[0].Pattern)
}

func TestHandleMalformedPayloadKeepsTable(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "truncated JSON", payload: `{"linkifiers": [`},
		{name: "broken YAML", payload: "linkifiers:\n\t- tabs are not YAML"},
		{name: "empty payload", payload: ""},
		{name: "whitespace only", payload: "   \n\t  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := seededTable(t, nil)
			sub := events.NewSubscriber(events.Config{}, tbl)

			assert.NotPanics(t, func() {
				sub.Handle(&nats.Msg{Subject: events.DefaultSubject, Data: []byte(tt.payload)})
			})

			entries := tbl.Entries()
			require.Len(t, entries, 1, "table should keep its previous rules")
			assert.Equal(t, `#(?P<id>[0-9]+)`, entries[0].Pattern)
		})
	}
}

func TestHandleIsolatesBrokenRules(t *testing.T) {
	recorder := &testutil.RecordingReporter{}
	tbl := seededTable(t, recorder)
	sub := events.NewSubscriber(events.Config{}, tbl)

	sub.Handle(&nats.Msg{
		Subject: events.DefaultSubject,
		Data: []byte(`{
			"linkifiers": [
				{"pattern": "T-(?P<num>[0-9]+)", "url_template": "https://tickets.example.com/{num}"},
				{"pattern": "broken(", "url_template": "https://example.com/"}
			]
		}`),
	})

	entries := tbl.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "T-(?P<num>[0-9]+)", entries[0].Pattern)

	failures := recorder.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "broken(", failures[0].Definition.Pattern)
}

func TestHandleEmptyListClearsTable(t *testing.T) {
	tbl := seededTable(t, nil)
	sub := events.NewSubscriber(events.Config{}, tbl)

	sub.Handle(&nats.Msg{
		Subject: events.DefaultSubject,
		Data:    []byte(`{"linkifiers": []}`),
	})

	assert.Equal(t, 0, tbl.Len())
}

func TestNewSubscriberDefaults(t *testing.T) {
	sub := events.NewSubscriber(events.Config{}, table.New())
	require.NotNil(t, sub)

	// The zero config connects to the local server on the default
	// subject; both come from the constructor, not from Start.
	assert.NotPanics(t, func() { sub.Close() })
}
