package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/balance"
	tea "github.com/charmbracelet/bubbletea"
)

// SnapshotFetcher returns the latest balances to show, one snapshot per
// holder.
type SnapshotFetcher func() ([]balance.Snapshot, error)

type dashboardModel struct {
	labels   map[string]string
	snaps    []balance.Snapshot
	updated  time.Time
	interval time.Duration
	fetch    SnapshotFetcher
	err      string
	quitting bool
}

type tickMsg time.Time

type snapshotsMsg []balance.Snapshot

type fetchErrMsg struct{ err error }

// NewDashboard returns a program that refreshes balances every interval.
// labels maps a holder address (hex) to a display name such as "vault".
func NewDashboard(interval time.Duration, labels map[string]string, fetch SnapshotFetcher) *tea.Program {
	return tea.NewProgram(newDashboard(interval, labels, fetch))
}

func newDashboard(interval time.Duration, labels map[string]string, fetch SnapshotFetcher) dashboardModel {
	return dashboardModel{labels: labels, interval: interval, fetch: fetch}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tick(m.interval))
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.fetchCmd()
		}
	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), tick(m.interval))
	case snapshotsMsg:
		m.snaps = msg
		m.updated = time.Now()
		m.err = ""
	case fetchErrMsg:
		m.err = msg.err.Error()
	}
	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("Vault balances") + "\n")
	if !m.updated.IsZero() {
		sb.WriteString(Meta(fmt.Sprintf("updated %s · every %s · r refresh · q quit", m.updated.Format("15:04:05"), m.interval)) + "\n\n")
	}
	if m.err != "" {
		sb.WriteString(Err(m.err) + "\n")
	}
	if len(m.snaps) == 0 {
		sb.WriteString(Meta("loading…") + "\n")
		return sb.String()
	}
	sb.WriteString(SnapshotTable(m.snaps, m.labels))
	return sb.String()
}

// SnapshotTable renders one row per holder and token.
func SnapshotTable(snaps []balance.Snapshot, labels map[string]string) string {
	t := NewTable(
		Column{Title: "Holder", Width: 14},
		Column{Title: "Token", Width: 6},
		Column{Title: "Balance", Width: 24, Right: true},
	)
	for _, s := range snaps {
		holder := labels[s.Holder.Hex()]
		if holder == "" {
			holder = TruncateAddr(s.Holder.Hex())
		}
		for _, e := range s.Entries {
			t.AddRow(holder, e.Token.Symbol, e.Formatted)
		}
	}
	return t.Render()
}

func (m dashboardModel) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		snaps, err := m.fetch()
		if err != nil {
			return fetchErrMsg{err}
		}
		return snapshotsMsg(snaps)
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}
