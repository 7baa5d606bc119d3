package graph

import (
	"context"
	"fmt"
	"strconv"

	"roleradar/internal/repository"
)

const rebuildPageSize = 500

// Rebuild replays the relational store into the graph and writes a single
// fresh snapshot. It repairs any divergence left by a crash between a
// relational commit and the following graph write.
func (s *Store) Rebuild(ctx context.Context, repo repository.Repository) error {
	ids, err := repo.ListCompanyIDs(ctx)
	if err != nil {
		return fmt.Errorf("list companies: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = map[string]Node{}
	s.adj = map[string][]Edge{}

	for _, id := range ids {
		company, err := repo.GetCompanyByID(ctx, id)
		if err != nil {
			return fmt.Errorf("load company %d: %w", id, err)
		}
		if company == nil {
			continue
		}
		s.nodes[CompanyNodeID(id)] = Node{
			ID:    CompanyNodeID(id),
			Type:  NodeCompany,
			Attrs: map[string]string{"name": company.Name},
		}
	}

	for offset := 0; ; offset += rebuildPageSize {
		opps, err := repo.ListOpportunities(ctx, repository.ListOpportunitiesParams{
			Limit:   rebuildPageSize,
			Offset:  offset,
			OrderBy: "id",
			Asc:     boolPtr(true),
		})
		if err != nil {
			return fmt.Errorf("list opportunities: %w", err)
		}
		for _, opp := range opps {
			nodeID := OpportunityNodeID(opp.ID)
			s.nodes[nodeID] = Node{
				ID:    nodeID,
				Type:  NodeOpportunity,
				Attrs: map[string]string{"title": opp.Title, "role_type": opp.RoleType},
			}
			s.addEdge(Edge{From: CompanyNodeID(opp.CompanyID), To: nodeID, Relation: RelationHasOpening})
		}
		if len(opps) < rebuildPageSize {
			break
		}
	}

	for offset := 0; ; offset += rebuildPageSize {
		sigs, err := repo.ListSignals(ctx, repository.ListSignalsParams{
			Limit:   rebuildPageSize,
			Offset:  offset,
			OrderBy: "id",
			Asc:     boolPtr(true),
		})
		if err != nil {
			return fmt.Errorf("list signals: %w", err)
		}
		for _, sig := range sigs {
			nodeID := SignalNodeID(sig.ID)
			s.nodes[nodeID] = Node{
				ID:    nodeID,
				Type:  NodeSignal,
				Attrs: map[string]string{"signal_type": sig.SignalType, "description": sig.Description},
			}
			s.addEdge(Edge{From: CompanyNodeID(sig.CompanyID), To: nodeID, Relation: RelationShowsSignal})
		}
		if len(sigs) < rebuildPageSize {
			break
		}
	}

	return s.save()
}

// ParseCompanyID recovers the numeric company id from a graph node id.
func ParseCompanyID(nodeID string) (uint64, bool) {
	const prefix = NodeCompany + ":"
	if len(nodeID) <= len(prefix) || nodeID[:len(prefix)] != prefix {
		return 0, false
	}
	id, err := strconv.ParseUint(nodeID[len(prefix):], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func boolPtr(v bool) *bool { return &v }
