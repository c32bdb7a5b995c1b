package pipeline

import (
	"context"
	"sort"
)

// menusCreateStage merges configured menus with pages that request menu
// membership through frontmatter, then sorts each menu by weight.
type menusCreateStage struct{}

func (st *menusCreateStage) Name() string { return StageMenusCreate }

func (st *menusCreateStage) Init(s *State) error {
	s.Menus = map[string][]MenuEntry{}
	return nil
}

func (st *menusCreateStage) CanProcess(s *State) bool {
	if len(s.Config.Menus) > 0 {
		return true
	}
	for _, p := range s.Pages {
		if len(p.Menus) > 0 {
			return true
		}
	}
	return false
}

func (st *menusCreateStage) Process(_ context.Context, s *State) error {
	for name, entries := range s.Config.Menus {
		for _, m := range entries {
			s.Menus[name] = append(s.Menus[name], MenuEntry{
				ID:     m.ID,
				Name:   m.Name,
				URL:    m.URL,
				Weight: m.Weight,
			})
		}
	}
	for _, p := range s.Pages {
		for _, menu := range p.Menus {
			s.Menus[menu] = append(s.Menus[menu], MenuEntry{
				ID:     p.Slug,
				Name:   p.Title,
				URL:    "/" + pageURL(p),
				Weight: intVar(p.Variables, "weight"),
			})
		}
	}
	for name := range s.Menus {
		entries := s.Menus[name]
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Weight < entries[j].Weight })
		s.Menus[name] = entries
	}
	return nil
}

func intVar(vars map[string]any, key string) int {
	if v, ok := vars[key].(int); ok {
		return v
	}
	return 0
}
