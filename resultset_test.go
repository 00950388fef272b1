package redisgraph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func riderReply() any {
	rider := []any{
		[]any{"id", int64(0)},
		[]any{"labels", []any{"Rider"}},
		[]any{"properties", []any{[]any{"name", "Valentino Rossi"}}},
	}
	team := []any{
		[]any{"id", int64(1)},
		[]any{"labels", []any{"Team"}},
		[]any{"properties", []any{[]any{"name", "Yamaha"}}},
	}
	rides := []any{
		[]any{"id", int64(0)},
		[]any{"type", "rides"},
		[]any{"src_node", int64(0)},
		[]any{"dest_node", int64(1)},
		[]any{"properties", []any{}},
	}
	return []any{
		[]any{"r", "e", "t", "r.name", "wins"},
		[]any{[]any{rider, rides, team, "Valentino Rossi", int64(89)}},
		[]any{"Cached execution: 1", "Query internal execution time: 0.250000 milliseconds"},
	}
}

func TestParseResultSetRows(t *testing.T) {
	rs, err := ParseResultSet(riderReply())
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, []string{"r", "e", "t", "r.name", "wins"}, rs.Header)
	require.Equal(t, 1, rs.Len())
	rec := rs.Records[0]

	rider, ok := rec.Node("r")
	require.True(t, ok, "Expected r to be a node")
	assert.Equal(t, &Node{ID: 0, Labels: []string{"Rider"}, Properties: map[string]any{"name": "Valentino Rossi"}}, rider)

	team, ok := rec.Node("t")
	require.True(t, ok, "Expected t to be a node")
	assert.Equal(t, []string{"Team"}, team.Labels)

	rides, ok := rec.Relation("e")
	require.True(t, ok, "Expected e to be a relation")
	assert.Equal(t, &Relation{ID: 0, Type: "rides", Source: 0, Destination: 1, Properties: map[string]any{}}, rides)

	name, ok := rec.Text("r.name")
	assert.True(t, ok)
	assert.Equal(t, "Valentino Rossi", name)

	wins, ok := rec.Int("wins")
	assert.True(t, ok)
	assert.Equal(t, int64(89), wins)

	_, ok = rec.Node("wins")
	assert.False(t, ok, "Expected a scalar not to read as a node")
	_, ok = rec.Scalar("r")
	assert.False(t, ok, "Expected a node not to read as a scalar")
	_, ok = rec.Scalar("missing")
	assert.False(t, ok)

	stats := rs.Stats()
	assert.True(t, stats.CachedExecution)
	assert.Equal(t, 250*time.Microsecond, stats.ExecutionTime)
}

func TestParseResultSetStatisticsOnly(t *testing.T) {
	rs, err := ParseResultSet([]any{[]any{
		"Labels added: 2",
		"Nodes created: 2",
		"Properties set: 2",
		"Relationships created: 1",
		"Cached execution: 0",
		"Query internal execution time: 0.500000 milliseconds",
	}})
	if err != nil {
		t.Fatal(err)
	}

	assert.Nil(t, rs.Header)
	assert.Equal(t, 0, rs.Len())
	assert.Equal(t, Stats{
		LabelsAdded:          2,
		NodesCreated:         2,
		PropertiesSet:        2,
		RelationshipsCreated: 1,
		ExecutionTime:        500 * time.Microsecond,
	}, rs.Stats())
}

func TestParseResultSetCompactHeader(t *testing.T) {
	rs, err := ParseResultSet([]any{
		[]any{[]any{int64(1), "a"}, []any{int64(1), "b"}},
		[]any{[]any{int64(1), nil}},
		[]any{},
	})
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, []string{"a", "b"}, rs.Header)
	v, ok := rs.Records[0].Scalar("b")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestParseResultSetScalarLists(t *testing.T) {
	list := []any{[]any{"x", int64(1)}, []any{"y", int64(2)}}
	rs, err := ParseResultSet([]any{
		[]any{"pairs"},
		[]any{[]any{list}},
		[]any{},
	})
	if err != nil {
		t.Fatal(err)
	}

	v, ok := rs.Records[0].Scalar("pairs")
	assert.True(t, ok, "Expected a list of pairs to stay a scalar")
	assert.Equal(t, list, v)
}

func TestParseResultSetMalformed(t *testing.T) {
	tests := map[string]any{
		"not an array":      "OK",
		"two elements":      []any{[]any{}, []any{}},
		"header not array":  []any{"h", []any{}, []any{}},
		"bad header cell":   []any{[]any{int64(1)}, []any{}, []any{}},
		"rows not array":    []any{[]any{"a"}, "rows", []any{}},
		"row not array":     []any{[]any{"a"}, []any{"row"}, []any{}},
		"row width":         []any{[]any{"a", "b"}, []any{[]any{int64(1)}}, []any{}},
		"statistics scalar": []any{"stats"},
		"statistic type":    []any{[]any{int64(1)}},
	}

	for name, reply := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseResultSet(reply)
			assert.ErrorIs(t, err, ErrMalformedReply)
		})
	}
}

func TestParseResultSetServerError(t *testing.T) {
	serverErr := serverError("Type mismatch: expected Integer but was String")

	tests := map[string]any{
		"after header and rows": []any{[]any{"x"}, []any{}, serverErr},
		"statistics only":       []any{serverErr},
	}

	for name, reply := range tests {
		t.Run(name, func(t *testing.T) {
			rs, err := ParseResultSet(reply)
			assert.Nil(t, rs)
			assert.Equal(t, serverErr, err, "Expected the server error unchanged")
			assert.NotErrorIs(t, err, ErrMalformedReply)
			assert.True(t, IsProtocolError(err))
		})
	}
}

func TestValueKindString(t *testing.T) {
	assert.Equal(t, "scalar", KindScalar.String())
	assert.Equal(t, "node", KindNode.String())
	assert.Equal(t, "relation", KindRelation.String())
	assert.Equal(t, "unknown", ValueKind(9).String())
}
