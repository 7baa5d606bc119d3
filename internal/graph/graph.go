package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

// Node and edge types in the relationship graph.
const (
	NodeCompany     = "company"
	NodeOpportunity = "opportunity"
	NodeSignal      = "signal"

	RelationHasOpening  = "has_opening"
	RelationShowsSignal = "shows_signal"
)

type Node struct {
	ID    string            `json:"id"`
	Type  string            `json:"type"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

type Edge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Relation string `json:"relation"`
}

type snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Store is a directed graph mirroring the relational entities. The relational
// store is authoritative; this is a derived projection. The whole graph is
// serialized and rewritten after every mutating call, which is O(graph size)
// per insert and acceptable only while the graph stays small.
type Store struct {
	path string
	lock *flock.Flock

	mu    sync.RWMutex
	nodes map[string]Node
	adj   map[string][]Edge
}

// Open loads the graph snapshot at path, starting empty when the file does
// not exist. A corrupt snapshot is discarded rather than failing startup;
// Rebuild restores it from the relational store.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		lock:  flock.New(path + ".lock"),
		nodes: map[string]Node{},
		adj:   map[string][]Edge{},
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read graph snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return s, nil
	}
	for _, n := range snap.Nodes {
		s.nodes[n.ID] = n
	}
	for _, e := range snap.Edges {
		s.adj[e.From] = append(s.adj[e.From], e)
	}
	return s, nil
}

func CompanyNodeID(id uint64) string     { return fmt.Sprintf("company:%d", id) }
func OpportunityNodeID(id uint64) string { return fmt.Sprintf("opportunity:%d", id) }
func SignalNodeID(id uint64) string      { return fmt.Sprintf("signal:%d", id) }

func (s *Store) AddCompanyNode(companyID uint64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[CompanyNodeID(companyID)] = Node{
		ID:    CompanyNodeID(companyID),
		Type:  NodeCompany,
		Attrs: map[string]string{"name": name},
	}
	return s.save()
}

func (s *Store) AddOpportunityEdge(opportunityID, companyID uint64, title, roleType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	nodeID := OpportunityNodeID(opportunityID)
	s.nodes[nodeID] = Node{
		ID:    nodeID,
		Type:  NodeOpportunity,
		Attrs: map[string]string{"title": title, "role_type": roleType},
	}
	s.addEdge(Edge{From: CompanyNodeID(companyID), To: nodeID, Relation: RelationHasOpening})
	return s.save()
}

func (s *Store) AddSignalEdge(signalID, companyID uint64, signalType, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	nodeID := SignalNodeID(signalID)
	s.nodes[nodeID] = Node{
		ID:    nodeID,
		Type:  NodeSignal,
		Attrs: map[string]string{"signal_type": signalType, "description": description},
	}
	s.addEdge(Edge{From: CompanyNodeID(companyID), To: nodeID, Relation: RelationShowsSignal})
	return s.save()
}

func (s *Store) addEdge(edge Edge) {
	for _, existing := range s.adj[edge.From] {
		if existing.To == edge.To && existing.Relation == edge.Relation {
			return
		}
	}
	s.adj[edge.From] = append(s.adj[edge.From], edge)
}

// Connections partitions a company's direct neighbors by node type.
type Connections struct {
	Opportunities []Node `json:"opportunities"`
	Signals       []Node `json:"signals"`
}

func (s *Store) ConnectionsOf(companyID uint64) Connections {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out Connections
	for _, edge := range s.adj[CompanyNodeID(companyID)] {
		node, ok := s.nodes[edge.To]
		if !ok {
			continue
		}
		switch node.Type {
		case NodeOpportunity:
			out.Opportunities = append(out.Opportunities, node)
		case NodeSignal:
			out.Signals = append(out.Signals, node)
		}
	}
	return out
}

type CompanySignalCount struct {
	CompanyID   string `json:"id"`
	SignalCount int    `json:"signal_count"`
}

// CompaniesWithAtLeastNSignals scans every company node and counts its
// signal neighbors.
func (s *Store) CompaniesWithAtLeastNSignals(min int) []CompanySignalCount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []CompanySignalCount
	for id := range s.nodes {
		if !strings.HasPrefix(id, NodeCompany+":") {
			continue
		}
		count := 0
		for _, edge := range s.adj[id] {
			if node, ok := s.nodes[edge.To]; ok && node.Type == NodeSignal {
				count++
			}
		}
		if count >= min {
			out = append(out, CompanySignalCount{
				CompanyID:   strings.TrimPrefix(id, NodeCompany+":"),
				SignalCount: count,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SignalCount > out[j].SignalCount })
	return out
}

// Reset drops all in-memory state without touching the snapshot. Used by
// Rebuild before replaying the relational store.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = map[string]Node{}
	s.adj = map[string][]Edge{}
}

// NodeCount reports nodes currently held, for logging.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// save rewrites the whole snapshot under the file lock. Callers hold s.mu.
func (s *Store) save() error {
	snap := snapshot{
		Nodes: make([]Node, 0, len(s.nodes)),
		Edges: []Edge{},
	}
	for _, n := range s.nodes {
		snap.Nodes = append(snap.Nodes, n)
	}
	sort.Slice(snap.Nodes, func(i, j int) bool { return snap.Nodes[i].ID < snap.Nodes[j].ID })
	froms := make([]string, 0, len(s.adj))
	for from := range s.adj {
		froms = append(froms, from)
	}
	sort.Strings(froms)
	for _, from := range froms {
		snap.Edges = append(snap.Edges, s.adj[from]...)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal graph snapshot: %w", err)
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock graph snapshot: %w", err)
	}
	defer s.lock.Unlock()

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create graph dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write graph snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace graph snapshot: %w", err)
	}
	return nil
}
