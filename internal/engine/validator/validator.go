// Package validator implements the clean-install consistency check that
// gates every resolved graph before its lockfile is accepted.
package validator

import (
	"strings"

	"go.trai.ch/relock/internal/core/domain"
	"go.trai.ch/relock/internal/core/ports"
	"go.trai.ch/zerr"
)

// Validator simulates a clean install over a graph: every edge must find a
// compatible satisfier by scope lookup.
type Validator struct {
	log ports.Logger
}

// New creates a new Validator.
func New(log ports.Logger) *Validator {
	return &Validator{log: log}
}

// Check walks every edge in the graph. A required edge with no visible
// node, or any edge whose nearest visible node violates its constraint,
// is a failure. An optional edge with no visible node at all is fine; an
// optional peer that IS shadowed by an incompatible version is not, since
// a present peer must still be honored.
//
// Returns the full list of unresolved edges and, when non-empty, an error
// wrapping domain.ErrBrokenLockfile. The caller must reject the lockfile
// on error rather than publish it.
func (v *Validator) Check(g *domain.Graph) ([]domain.Unresolved, error) {
	var issues []domain.Unresolved

	for _, path := range g.Paths() {
		n, _ := g.Node(path)
		if n.Link {
			continue
		}
		for _, e := range n.Edges {
			vis := g.Lookup(path, e.Name.String())
			if vis == nil {
				if e.Required() {
					issues = append(issues, domain.Unresolved{
						Consumer:   path,
						Name:       e.Name.String(),
						Constraint: e.Constraint.String(),
					})
				}
				continue
			}
			if !e.Constraint.Check(vis.Version) {
				found := "unversioned"
				if vis.Version != nil {
					found = vis.Version.Original()
				}
				issues = append(issues, domain.Unresolved{
					Consumer:   path,
					Name:       e.Name.String(),
					Constraint: e.Constraint.String(),
					Found:      found,
				})
			}
		}
	}

	if len(issues) == 0 {
		return nil, nil
	}

	lines := make([]string, len(issues))
	for i, u := range issues {
		lines[i] = u.String()
	}
	return issues, zerr.With(domain.ErrBrokenLockfile, "unresolved_edges", strings.Join(lines, "; "))
}
