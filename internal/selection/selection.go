// Package selection implements the per-item option selection state machine:
// SINGLE groups behave like radio buttons, MULTI groups like checkboxes.
package selection

import (
	"sort"

	"tableside/internal/model"
	"tableside/internal/pricing"
)

// Policy controls group ordering and default pre-selection. Both are driven
// by catalogue data (group Category tags and option IsDefault flags) rather
// than string matching on names.
type Policy struct {
	// PriorityCategory names the group category sorted ahead of the rest,
	// e.g. "size". Empty keeps catalogue order.
	PriorityCategory string

	// PreselectDefaults pre-selects the option flagged as default within
	// each SINGLE group.
	PreselectDefaults bool
}

// DefaultPolicy sorts size groups first and honours catalogue defaults.
func DefaultPolicy() Policy {
	return Policy{PriorityCategory: "size", PreselectDefaults: true}
}

type groupState struct {
	group    model.OptionGroup
	selected []bool
}

// Engine holds the transient selection state for one menu item. Nothing is
// persisted until the selection is turned into a cart line.
type Engine struct {
	item   model.MenuItem
	groups []groupState
}

// New builds an engine for the item, applying the policy's ordering and
// default pre-selection.
func New(item model.MenuItem, policy Policy) *Engine {
	groups := make([]groupState, 0, len(item.OptionGroups))
	for _, g := range item.OptionGroups {
		gs := groupState{group: g, selected: make([]bool, len(g.Options))}
		if policy.PreselectDefaults && g.Mode == model.SelectionSingle {
			for i, opt := range g.Options {
				if opt.IsDefault {
					gs.selected[i] = true
					break
				}
			}
		}
		groups = append(groups, gs)
	}

	if policy.PriorityCategory != "" {
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].group.Category == policy.PriorityCategory &&
				groups[j].group.Category != policy.PriorityCategory
		})
	}

	return &Engine{item: item, groups: groups}
}

// Toggle flips the state of one option. In a SINGLE group the chosen option
// becomes the only selected one; in a MULTI group it toggles independently.
func (e *Engine) Toggle(groupID, optionID string) error {
	for gi := range e.groups {
		g := &e.groups[gi]
		if g.group.ID != groupID {
			continue
		}
		for oi, opt := range g.group.Options {
			if opt.ID != optionID {
				continue
			}
			if g.group.Mode == model.SelectionSingle {
				for k := range g.selected {
					g.selected[k] = false
				}
				g.selected[oi] = true
			} else {
				g.selected[oi] = !g.selected[oi]
			}
			return nil
		}
		return model.ErrOptionNotFound
	}
	return model.ErrOptionNotFound
}

// Apply overlays the submitted option ids onto the initial selection,
// typically the set a client sends with an add-to-cart request. A group that
// receives at least one id is replaced wholesale; a group the submission does
// not mention keeps its pre-selected default. Within a SINGLE group a later
// id wins over an earlier one.
func (e *Engine) Apply(optionIDs []string) error {
	targeted := make(map[string]bool, len(optionIDs))
	for _, id := range optionIDs {
		groupID, ok := e.groupOf(id)
		if !ok {
			return model.ErrOptionNotFound
		}
		targeted[groupID] = true
	}

	for gi := range e.groups {
		if !targeted[e.groups[gi].group.ID] {
			continue
		}
		for k := range e.groups[gi].selected {
			e.groups[gi].selected[k] = false
		}
	}

	for _, id := range optionIDs {
		groupID, _ := e.groupOf(id)
		if err := e.Toggle(groupID, id); err != nil {
			return err
		}
	}
	return nil
}

// Validate fails on the first SINGLE group with no selected option,
// reporting it by name. MULTI groups are always valid, including empty.
func (e *Engine) Validate() error {
	for _, g := range e.groups {
		if g.group.Mode != model.SelectionSingle {
			continue
		}
		satisfied := false
		for _, sel := range g.selected {
			if sel {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return &model.GroupUnsatisfiedError{Group: g.group.Name}
		}
	}
	return nil
}

// Selected flattens the current selection into price snapshots suitable for
// constructing a cart line, in display order.
func (e *Engine) Selected() []model.SelectedOption {
	var out []model.SelectedOption
	for _, g := range e.groups {
		for oi, opt := range g.group.Options {
			if !g.selected[oi] {
				continue
			}
			out = append(out, model.SelectedOption{
				OptionID:        opt.ID,
				GroupName:       g.group.Name,
				OptionName:      opt.Name,
				AdditionalPrice: opt.AdditionalPrice,
			})
		}
	}
	return out
}

// Total computes the line price for the current selection.
func (e *Engine) Total(quantity int) int64 {
	return pricing.LineTotal(e.item.BasePrice, e.Selected(), quantity)
}

// Groups returns the option groups in display order.
func (e *Engine) Groups() []model.OptionGroup {
	out := make([]model.OptionGroup, len(e.groups))
	for i, g := range e.groups {
		out[i] = g.group
	}
	return out
}

// IsSelected reports whether an option is currently selected.
func (e *Engine) IsSelected(groupID, optionID string) bool {
	for _, g := range e.groups {
		if g.group.ID != groupID {
			continue
		}
		for oi, opt := range g.group.Options {
			if opt.ID == optionID {
				return g.selected[oi]
			}
		}
	}
	return false
}

func (e *Engine) groupOf(optionID string) (string, bool) {
	for _, g := range e.groups {
		for _, opt := range g.group.Options {
			if opt.ID == optionID {
				return g.group.ID, true
			}
		}
	}
	return "", false
}
