package pipeline

import (
	"context"
	"sort"
)

// taxonomiesCreateStage aggregates frontmatter terms into the configured
// taxonomies. Only taxonomies declared in the configuration are collected.
type taxonomiesCreateStage struct{}

func (st *taxonomiesCreateStage) Name() string { return StageTaxonomiesCreate }

func (st *taxonomiesCreateStage) Init(s *State) error {
	s.Taxonomies = map[string]map[string][]*Page{}
	return nil
}

func (st *taxonomiesCreateStage) CanProcess(s *State) bool {
	return len(s.Config.Taxonomies) > 0 && len(s.Pages) > 0
}

func (st *taxonomiesCreateStage) Process(_ context.Context, s *State) error {
	for plural := range s.Config.Taxonomies {
		s.Taxonomies[plural] = map[string][]*Page{}
	}
	for _, p := range s.Pages {
		for plural, terms := range p.Terms {
			byTerm, ok := s.Taxonomies[plural]
			if !ok {
				continue
			}
			for _, term := range terms {
				byTerm[term] = append(byTerm[term], p)
			}
		}
	}
	// Deterministic member order inside each term.
	for _, byTerm := range s.Taxonomies {
		for _, pages := range byTerm {
			sort.Slice(pages, func(i, j int) bool { return pages[i].Path < pages[j].Path })
		}
	}
	return nil
}
