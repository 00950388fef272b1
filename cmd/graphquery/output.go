package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	redisgraph "github.com/jvanmalder/redis-graph"
)

func printResultSet(w io.Writer, rs *redisgraph.ResultSet) error {
	if len(rs.Header) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(rs.Header, "\t"))
		for _, rec := range rs.Records {
			cells := make([]string, len(rs.Header))
			for i, col := range rs.Header {
				cells[i] = formatValue(rec[col])
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	for _, line := range rs.Statistics {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatValue(v redisgraph.Value) string {
	switch v.Kind {
	case redisgraph.KindNode:
		var b strings.Builder
		b.WriteString("(")
		for _, l := range v.Node.Labels {
			b.WriteString(":" + l)
		}
		b.WriteString(formatProperties(v.Node.Properties))
		b.WriteString(")")
		return b.String()
	case redisgraph.KindRelation:
		return fmt.Sprintf("[:%s%s]", v.Relation.Type, formatProperties(v.Relation.Properties))
	default:
		if v.Scalar == nil {
			return "NULL"
		}
		return fmt.Sprint(v.Scalar)
	}
}

func formatProperties(props map[string]any) string {
	if len(props) == 0 {
		return ""
	}
	parts := make([]string, 0, len(props))
	for _, k := range slices.Sorted(maps.Keys(props)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, props[k]))
	}
	return " {" + strings.Join(parts, ", ") + "}"
}
