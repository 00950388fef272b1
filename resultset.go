package redisgraph

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValueKind tells which field of a Value is set.
type ValueKind int

const (
	KindScalar ValueKind = iota
	KindNode
	KindRelation
)

func (k ValueKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindNode:
		return "node"
	case KindRelation:
		return "relation"
	default:
		return "unknown"
	}
}

// Node is a graph node as returned in verbose replies.
type Node struct {
	ID         int64
	Labels     []string
	Properties map[string]any
}

// Relation is a graph edge as returned in verbose replies.
type Relation struct {
	ID          int64
	Type        string
	Source      int64
	Destination int64
	Properties  map[string]any
}

// Value is one cell of a result row.
type Value struct {
	Kind     ValueKind
	Scalar   any
	Node     *Node
	Relation *Relation
}

// Record maps column names to the cells of one row.
type Record map[string]Value

// Scalar returns the scalar stored under column.
func (r Record) Scalar(column string) (any, bool) {
	v, ok := r[column]
	if !ok || v.Kind != KindScalar {
		return nil, false
	}
	return v.Scalar, true
}

// Text returns the scalar under column if it is a string.
func (r Record) Text(column string) (string, bool) {
	s, ok := r.Scalar(column)
	if !ok {
		return "", false
	}
	return toString(s)
}

// Int returns the scalar under column if it is an integer.
func (r Record) Int(column string) (int64, bool) {
	s, ok := r.Scalar(column)
	if !ok {
		return 0, false
	}
	n, ok := s.(int64)
	return n, ok
}

func (r Record) Node(column string) (*Node, bool) {
	v, ok := r[column]
	if !ok || v.Kind != KindNode {
		return nil, false
	}
	return v.Node, true
}

func (r Record) Relation(column string) (*Relation, bool) {
	v, ok := r[column]
	if !ok || v.Kind != KindRelation {
		return nil, false
	}
	return v.Relation, true
}

// ResultSet is the decoded reply of a graph query.
type ResultSet struct {
	Header     []string
	Records    []Record
	Statistics []string
}

func (rs *ResultSet) Len() int {
	return len(rs.Records)
}

// Stats parses the statistics lines. Unknown lines are ignored.
func (rs *ResultSet) Stats() Stats {
	var s Stats
	for _, line := range rs.Statistics {
		name, raw, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			continue
		}
		switch strings.TrimSpace(name) {
		case "Labels added":
			s.LabelsAdded = atoi(fields[0])
		case "Labels removed":
			s.LabelsRemoved = atoi(fields[0])
		case "Nodes created":
			s.NodesCreated = atoi(fields[0])
		case "Nodes deleted":
			s.NodesDeleted = atoi(fields[0])
		case "Properties set":
			s.PropertiesSet = atoi(fields[0])
		case "Properties removed":
			s.PropertiesRemoved = atoi(fields[0])
		case "Relationships created":
			s.RelationshipsCreated = atoi(fields[0])
		case "Relationships deleted":
			s.RelationshipsDeleted = atoi(fields[0])
		case "Indices created":
			s.IndicesCreated = atoi(fields[0])
		case "Indices deleted":
			s.IndicesDeleted = atoi(fields[0])
		case "Cached execution":
			s.CachedExecution = atoi(fields[0]) == 1
		case "Query internal execution time":
			if ms, err := strconv.ParseFloat(fields[0], 64); err == nil {
				s.ExecutionTime = time.Duration(ms * float64(time.Millisecond))
			}
		}
	}
	return s
}

// Stats holds the counters a graph query reports.
type Stats struct {
	LabelsAdded          int
	LabelsRemoved        int
	NodesCreated         int
	NodesDeleted         int
	PropertiesSet        int
	PropertiesRemoved    int
	RelationshipsCreated int
	RelationshipsDeleted int
	IndicesCreated       int
	IndicesDeleted       int
	CachedExecution      bool
	ExecutionTime        time.Duration
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// ParseResultSet decodes a raw GRAPH.QUERY reply. A reply holds either only
// statistics, or a header, the rows and the statistics.
func ParseResultSet(reply any) (*ResultSet, error) {
	parts, ok := reply.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %T", ErrMalformedReply, reply)
	}

	// a runtime failure replaces the statistics with the server's error
	if len(parts) > 0 {
		if err, ok := parts[len(parts)-1].(error); ok {
			return nil, err
		}
	}

	switch len(parts) {
	case 1:
		stats, err := parseStatistics(parts[0])
		if err != nil {
			return nil, err
		}
		return &ResultSet{Statistics: stats}, nil
	case 3:
		header, err := parseHeader(parts[0])
		if err != nil {
			return nil, err
		}
		records, err := parseRows(header, parts[1])
		if err != nil {
			return nil, err
		}
		stats, err := parseStatistics(parts[2])
		if err != nil {
			return nil, err
		}
		return &ResultSet{Header: header, Records: records, Statistics: stats}, nil
	default:
		return nil, fmt.Errorf("%w: expected 1 or 3 elements, got %d", ErrMalformedReply, len(parts))
	}
}

func parseHeader(v any) ([]string, error) {
	cells, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: header is %T", ErrMalformedReply, v)
	}
	header := make([]string, 0, len(cells))
	for _, cell := range cells {
		if name, ok := toString(cell); ok {
			header = append(header, name)
			continue
		}
		// compact replies send [column type, name]
		if pair, ok := cell.([]any); ok && len(pair) == 2 {
			if name, ok := toString(pair[1]); ok {
				header = append(header, name)
				continue
			}
		}
		return nil, fmt.Errorf("%w: header cell is %T", ErrMalformedReply, cell)
	}
	return header, nil
}

func parseRows(header []string, v any) ([]Record, error) {
	rows, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: rows are %T", ErrMalformedReply, v)
	}
	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		cells, ok := row.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: row %d is %T", ErrMalformedReply, i, row)
		}
		if len(cells) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d cells for %d columns", ErrMalformedReply, i, len(cells), len(header))
		}
		rec := make(Record, len(header))
		for j, cell := range cells {
			rec[header[j]] = parseValue(cell)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseStatistics(v any) ([]string, error) {
	lines, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: statistics are %T", ErrMalformedReply, v)
	}
	stats := make([]string, 0, len(lines))
	for _, line := range lines {
		s, ok := toString(line)
		if !ok {
			return nil, fmt.Errorf("%w: statistic is %T", ErrMalformedReply, line)
		}
		stats = append(stats, s)
	}
	return stats, nil
}

func parseValue(v any) Value {
	fields, ok := asPairs(v)
	if !ok || len(fields) == 0 {
		return Value{Kind: KindScalar, Scalar: v}
	}
	if n, ok := asNode(fields); ok {
		return Value{Kind: KindNode, Node: n}
	}
	if r, ok := asRelation(fields); ok {
		return Value{Kind: KindRelation, Relation: r}
	}
	return Value{Kind: KindScalar, Scalar: v}
}

// asPairs reads an array of [name, value] pairs.
func asPairs(v any) (map[string]any, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	fields := make(map[string]any, len(items))
	for _, item := range items {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			return nil, false
		}
		name, ok := toString(pair[0])
		if !ok {
			return nil, false
		}
		fields[name] = pair[1]
	}
	return fields, true
}

func asNode(fields map[string]any) (*Node, bool) {
	if len(fields) != 3 {
		return nil, false
	}
	id, ok := toInt64(fields["id"])
	if !ok {
		return nil, false
	}
	labels, ok := toStrings(fields["labels"])
	if !ok {
		return nil, false
	}
	props, ok := asPairs(fields["properties"])
	if !ok {
		return nil, false
	}
	return &Node{ID: id, Labels: labels, Properties: props}, true
}

func asRelation(fields map[string]any) (*Relation, bool) {
	if len(fields) != 5 {
		return nil, false
	}
	id, ok := toInt64(fields["id"])
	if !ok {
		return nil, false
	}
	typ, ok := toString(fields["type"])
	if !ok {
		return nil, false
	}
	src, ok := toInt64(fields["src_node"])
	if !ok {
		return nil, false
	}
	dst, ok := toInt64(fields["dest_node"])
	if !ok {
		return nil, false
	}
	props, ok := asPairs(fields["properties"])
	if !ok {
		return nil, false
	}
	return &Relation{ID: id, Type: typ, Source: src, Destination: dst, Properties: props}, true
}

func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}

func toStrings(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := toString(item)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}
