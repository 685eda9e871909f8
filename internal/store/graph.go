package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/avelar/adapt/internal/depgraph"
	"github.com/avelar/adapt/internal/mastery"
)

// GraphRepo persists prerequisite edges. Cycle checking lives in depgraph;
// the repository stores whatever a validated graph hands it.
type GraphRepo struct {
	db *sqlx.DB
}

type edgeRow struct {
	Prereq    string `db:"prereq"`
	Dependent string `db:"dependent"`
	MinLevel  string `db:"min_level"`
	Mode      string `db:"mode"`
}

// AddEdge inserts one edge. Duplicates fail on the primary key.
func (r *GraphRepo) AddEdge(ctx context.Context, e depgraph.Edge) error {
	row := edgeRow{
		Prereq:    e.Prereq,
		Dependent: e.Dependent,
		MinLevel:  string(e.MinLevel),
		Mode:      string(e.Mode),
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO graph_edges (prereq, dependent, min_level, mode)
		VALUES (:prereq, :dependent, :min_level, :mode)`, row)
	if err != nil {
		return fmt.Errorf("add edge %s -> %s: %w", e.Prereq, e.Dependent, err)
	}
	return nil
}

// RemoveEdge deletes one edge. Removing a missing edge is a no-op.
func (r *GraphRepo) RemoveEdge(ctx context.Context, prereq, dependent string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM graph_edges WHERE prereq = ? AND dependent = ?`, prereq, dependent)
	if err != nil {
		return fmt.Errorf("remove edge %s -> %s: %w", prereq, dependent, err)
	}
	return nil
}

// ListEdges returns every stored edge in deterministic order.
func (r *GraphRepo) ListEdges(ctx context.Context) ([]depgraph.Edge, error) {
	var rows []edgeRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM graph_edges ORDER BY prereq, dependent`)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	out := make([]depgraph.Edge, len(rows))
	for i, row := range rows {
		out[i] = depgraph.Edge{
			Prereq:    row.Prereq,
			Dependent: row.Dependent,
			MinLevel:  mastery.Level(row.MinLevel),
			Mode:      depgraph.Mode(row.Mode),
		}
	}
	return out, nil
}

// LoadGraph rebuilds the validated in-memory graph from the stored edges.
func (r *GraphRepo) LoadGraph(ctx context.Context) (*depgraph.Graph, error) {
	edges, err := r.ListEdges(ctx)
	if err != nil {
		return nil, err
	}
	g, err := depgraph.New(edges)
	if err != nil {
		return nil, fmt.Errorf("stored graph invalid: %w", err)
	}
	return g, nil
}
