package cli

import (
	"encoding/hex"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/inkpath/inkpath/pkg/rm"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// hexDumpWidth is the number of payload bytes shown per line in the
// block detail view.
const hexDumpWidth = 16

// BlockListModel is the bubbletea model for interactive block browsing.
// The list view shows one row per block; enter toggles a hex dump of
// the selected block's payload.
type BlockListModel struct {
	Blocks   []rm.Block
	Cursor   int
	Height   int
	Offset   int
	ShowHex  bool
	HexLines int
}

// NewBlockListModel creates a new block list model.
func NewBlockListModel(blocks []rm.Block) BlockListModel {
	return BlockListModel{
		Blocks:   blocks,
		Height:   15,
		HexLines: 16,
	}
}

func (m BlockListModel) Init() tea.Cmd {
	return nil
}

func (m BlockListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.ShowHex {
				m.ShowHex = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Blocks)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.ShowHex = !m.ShowHex
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m BlockListModel) View() string {
	if m.ShowHex {
		return m.hexView()
	}
	return m.listView()
}

func (m BlockListModel) listView() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Blocks"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ payload  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Blocks) {
		end = len(m.Blocks)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		blk := m.Blocks[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			fmt.Sprintf("%d", blk.Offset),
			blk.Type.String(),
			fmt.Sprintf("%d/%d", blk.MinVersion, blk.CurrentVersion),
			fmt.Sprintf("%d B", blk.Length()),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Offset", "Type", "Version", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Blocks))))

	return b.String()
}

func (m BlockListModel) hexView() string {
	blk := m.Blocks[m.Cursor]

	var b strings.Builder
	b.WriteString(StyleTitle.Render(blk.Type.String()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf(
		"offset %d  min=%d cur=%d  %d bytes   ⏎/esc back",
		blk.Offset, blk.MinVersion, blk.CurrentVersion, blk.Length())))
	b.WriteString("\n\n")

	payload := blk.Payload
	maxBytes := m.HexLines * hexDumpWidth
	truncated := false
	if len(payload) > maxBytes {
		payload = payload[:maxBytes]
		truncated = true
	}

	for off := 0; off < len(payload); off += hexDumpWidth {
		end := off + hexDumpWidth
		if end > len(payload) {
			end = len(payload)
		}
		line := payload[off:end]

		b.WriteString(listDimStyle.Render(fmt.Sprintf("%06x  ", off)))
		b.WriteString(StyleValue.Render(fmt.Sprintf("%-48s", spacedHex(line))))
		b.WriteString(listDimStyle.Render(printable(line)))
		b.WriteString("\n")
	}
	if truncated {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("… %d more bytes", blk.Length()-maxBytes)))
		b.WriteString("\n")
	}

	return b.String()
}

func spacedHex(line []byte) string {
	pairs := make([]string, len(line))
	for i, v := range line {
		pairs[i] = hex.EncodeToString([]byte{v})
	}
	return strings.Join(pairs, " ")
}

func printable(line []byte) string {
	out := make([]byte, len(line))
	for i, v := range line {
		if v >= 0x20 && v < 0x7f {
			out[i] = v
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}
