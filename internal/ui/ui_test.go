package ui

import (
	"bytes"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/balance"
	"github.com/Mohsinsiddi/w3vault/internal/token"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageHelpers(t *testing.T) {
	assert.Contains(t, Success("done"), "✓ done")
	assert.Contains(t, Warn("careful"), "⚠ careful")
	assert.Contains(t, Err("boom"), "✗ boom")
	assert.Contains(t, Info("working"), "ℹ working")
	assert.Contains(t, Hint("run w3vault balance"), "→ run w3vault balance")
}

func TestTruncateAddr(t *testing.T) {
	assert.Equal(t, "0x1234…5678", TruncateAddr("0x1234000000000000000000000000000000005678"))
	assert.Equal(t, "0xabc", TruncateAddr("0xabc"))
	assert.Equal(t, "", TruncateAddr(""))
}

func TestTableRender(t *testing.T) {
	tbl := NewTable(Column{Title: "Token", Width: 6}, Column{Title: "Balance", Width: 10, Right: true})
	tbl.AddRow("DAI", "1.5")
	tbl.AddRow("USDC")
	out := tbl.Render()

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Token")
	assert.Contains(t, lines[1], "──────")
	assert.Contains(t, lines[2], "DAI")
	assert.Contains(t, lines[2], "       1.5")
	assert.Contains(t, lines[3], "USDC")
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ab  ", fit("ab", 4, false))
	assert.Equal(t, "  ab", fit("ab", 4, true))
	assert.Equal(t, "abc…", fit("abcdefgh", 4, false))
}

func TestKeyValueBlock(t *testing.T) {
	out := KeyValueBlock("Account", [][2]string{{"Address", "0xabc"}, {"Deployed", "yes"}})
	assert.Contains(t, out, "Account")
	assert.Contains(t, out, "Address:")
	assert.Contains(t, out, "0xabc")
	assert.Contains(t, out, "Deployed:")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yep\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		assert.Equal(t, tt.want, Confirm(strings.NewReader(tt.in), &out, "Proceed?"), "input %q", tt.in)
		assert.Contains(t, out.String(), "Proceed?")
	}
}

func TestSpinnerStops(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "waiting")
	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()
	s.Stop()
	assert.Contains(t, buf.String(), "waiting")
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(&buf)
	n.Info("Processing deposit on the blockchain!")
	n.Success("Transaction Hash: 0xabc")
	n.Error("Error occurred: boom")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Processing deposit on the blockchain!")
	assert.Contains(t, lines[1], "Transaction Hash: 0xabc")
	assert.Contains(t, lines[2], "Error occurred: boom")
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(key(k))
	}
	return m
}

func pickerItems() []PickerItem {
	return []PickerItem{
		{Label: "DAI", SubLabel: "0xd1", Value: "DAI"},
		{Label: "USDC", SubLabel: "0xc1", Value: "USDC"},
		{Label: "USDT", SubLabel: "0xa1", Value: "USDT"},
	}
}

func TestPickerNavigation(t *testing.T) {
	m := press(newPicker("Token", pickerItems()), "down", "down", "down", "up", "enter")
	assert.Equal(t, "USDC", m.(pickerModel).value())

	m = press(newPicker("Token", pickerItems()), "up", "k", "enter")
	assert.Equal(t, "DAI", m.(pickerModel).value())

	m = press(newPicker("Token", pickerItems()), "j", "j", " ")
	assert.Equal(t, "USDT", m.(pickerModel).value())
}

func TestPickerCancel(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		m := press(newPicker("Token", pickerItems()), "down", k)
		assert.Empty(t, m.(pickerModel).value(), k)
		assert.Empty(t, m.View())
	}
}

func TestPickerView(t *testing.T) {
	view := newPicker("Pick a token", pickerItems()).View()
	assert.Contains(t, view, "Pick a token")
	assert.Contains(t, view, "▸ DAI")
	assert.Contains(t, view, "USDT")
}

func TestPickEmpty(t *testing.T) {
	_, err := Pick("Token", nil)
	assert.ErrorIs(t, err, ErrNothingToPick)
}

func testSnapshots() []balance.Snapshot {
	vault := common.HexToAddress("0x1000000000000000000000000000000000000001")
	acct := common.HexToAddress("0x2000000000000000000000000000000000000002")
	dai := token.Token{Symbol: "DAI", Decimals: 18}
	usdc := token.Token{Symbol: "USDC", Decimals: 6}
	return []balance.Snapshot{
		{Holder: vault, Entries: []balance.Entry{
			{Token: dai, Raw: big.NewInt(1), Formatted: "12.5"},
			{Token: usdc, Raw: big.NewInt(1), Formatted: "3"},
		}},
		{Holder: acct, Entries: []balance.Entry{
			{Token: usdc, Raw: big.NewInt(1), Formatted: "0.25"},
		}},
	}
}

func TestSnapshotTable(t *testing.T) {
	snaps := testSnapshots()
	out := SnapshotTable(snaps, map[string]string{snaps[0].Holder.Hex(): "vault"})
	assert.Contains(t, out, "vault")
	assert.Contains(t, out, "12.5")
	assert.Contains(t, out, "0.25")
	assert.Contains(t, out, TruncateAddr(snaps[1].Holder.Hex()))
}

func TestDashboardUpdates(t *testing.T) {
	calls := 0
	fetch := func() ([]balance.Snapshot, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("rpc down")
		}
		return testSnapshots(), nil
	}
	var m tea.Model = newDashboard(time.Second, nil, fetch)
	assert.Contains(t, m.View(), "loading")

	msg := m.(dashboardModel).fetchCmd()()
	m, _ = m.Update(msg)
	assert.Contains(t, m.View(), "12.5")
	assert.False(t, m.(dashboardModel).updated.IsZero())

	msg = m.(dashboardModel).fetchCmd()()
	m, _ = m.Update(msg)
	view := m.View()
	assert.Contains(t, view, "rpc down")
	assert.Contains(t, view, "12.5", "last good snapshot stays on screen")

	m, cmd := m.Update(key("q"))
	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
