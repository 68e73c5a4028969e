// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"grimm.is/relayprofile/internal/rules"
	"grimm.is/relayprofile/internal/typed"
)

// view names the currently active tab: one of the three collections a
// decoded profile has.
type view int

const (
	viewPolicies view = iota
	viewGroups
	viewRules
)

func (v view) String() string {
	switch v {
	case viewPolicies:
		return "Policies"
	case viewGroups:
		return "Policy Groups"
	case viewRules:
		return "Rules"
	default:
		return "?"
	}
}

var views = []view{viewPolicies, viewGroups, viewRules}

// item is a title/description pair satisfying list.Item.
type item struct {
	title string
	desc  string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

// model is the root bubbletea model: one list per view, switched with Tab,
// dispatching key handling to the active one.
type model struct {
	profile *typed.Profile
	active  view
	lists   map[view]list.Model
	width   int
	height  int
}

func newModel(p *typed.Profile) model {
	lists := map[view]list.Model{
		viewPolicies: newListModel("Policies", policyItems(p)),
		viewGroups:   newListModel("Policy Groups", groupItems(p)),
		viewRules:    newListModel("Rules", ruleItems(p)),
	}
	return model{profile: p, active: viewPolicies, lists: lists}
}

func newListModel(title string, items []list.Item) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(ColorIce).
		BorderLeft(false).BorderLeftForeground(ColorIce)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(ColorDeep)

	l := list.New(items, delegate, 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.Styles.Title = StyleTitle
	return l
}

func policyItems(p *typed.Profile) []list.Item {
	items := make([]list.Item, 0, len(p.Policies))
	for _, pol := range p.Policies {
		desc := string(pol.Type)
		if pol.Proxy != nil {
			desc = fmt.Sprintf("%s %s:%d", pol.Proxy.Protocol, pol.Proxy.ServerAddress, pol.Proxy.Port)
		}
		items = append(items, item{title: pol.Name, desc: desc})
	}
	return items
}

func groupItems(p *typed.Profile) []list.Item {
	items := make([]list.Item, 0, len(p.PolicyGroups))
	for _, g := range p.PolicyGroups {
		items = append(items, item{
			title: g.Name,
			desc:  fmt.Sprintf("%s: %s", g.Type, strings.Join(g.Policies, ", ")),
		})
	}
	return items
}

func ruleItems(p *typed.Profile) []list.Item {
	items := make([]list.Item, 0, len(p.Rules))
	for _, r := range p.Rules {
		canonical := rules.CanonicalFormat(rules.Rule{
			Tag:        r.Tag,
			Expression: r.Expression,
			Policy:     r.Policy,
			Disabled:   r.Disabled,
			Comment:    r.Comment,
		})
		items = append(items, item{title: r.Tag, desc: canonical})
	}
	return items
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		for v, l := range m.lists {
			l.SetSize(msg.Width, msg.Height-4)
			m.lists[v] = l
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.active = views[(int(m.active)+1)%len(views)]
			return m, nil
		case "shift+tab":
			m.active = views[(int(m.active)-1+len(views))%len(views)]
			return m, nil
		}
	}

	l, cmd := m.lists[m.active].Update(msg)
	m.lists[m.active] = l
	return m, cmd
}

func (m model) View() string {
	var tabs strings.Builder
	for _, v := range views {
		style := StyleTab
		if v == m.active {
			style = StyleTabActive
		}
		tabs.WriteString(style.Render(v.String()))
	}

	body := m.lists[m.active].View()
	return StyleHeader.Render(tabs.String()) + "\n" + StyleCard.Render(body)
}
