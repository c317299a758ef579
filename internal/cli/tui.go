package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/nutrilabel/pkg/nutrition"
)

// headerRow is the row index lipgloss/table passes to StyleFunc for headers.
const headerRow = -1

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	tableHeadStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tableBorderTint = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ProductListModel - Interactive product selection
// =============================================================================

// ProductListModel is the bubbletea model for interactive product selection.
// Space toggles a product when Multi is set; enter confirms.
type ProductListModel struct {
	Products []*nutrition.Record
	Multi    bool
	Cursor   int
	Height   int
	Offset   int
	Marked   map[int]bool
	Selected []*nutrition.Record
}

// NewProductListModel creates a new product list model.
func NewProductListModel(products []*nutrition.Record, multi bool) ProductListModel {
	return ProductListModel{
		Products: products,
		Multi:    multi,
		Height:   15,
		Marked:   make(map[int]bool),
	}
}

func (m ProductListModel) Init() tea.Cmd {
	return nil
}

func (m ProductListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Products)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ":
			if m.Multi {
				m.Marked[m.Cursor] = !m.Marked[m.Cursor]
			}
		case "a":
			if m.Multi {
				all := len(m.marked()) < len(m.Products)
				for i := range m.Products {
					m.Marked[i] = all
				}
			}
		case "enter":
			if len(m.Products) == 0 {
				return m, tea.Quit
			}
			m.Selected = m.marked()
			if len(m.Selected) == 0 {
				m.Selected = []*nutrition.Record{m.Products[m.Cursor]}
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

// marked returns the toggled products in list order.
func (m ProductListModel) marked() []*nutrition.Record {
	var out []*nutrition.Record
	for i, p := range m.Products {
		if m.Marked[i] {
			out = append(out, p)
		}
	}
	return out
}

func (m ProductListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Product"))
	b.WriteString("\n")
	help := "↑/↓ navigate  ⏎ select  q quit"
	if m.Multi {
		help = "↑/↓ navigate  space toggle  a all  ⏎ confirm  q quit"
	}
	b.WriteString(listDimStyle.Render(help))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Products))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		if m.Multi {
			mark := "[ ]"
			if m.Marked[i] {
				mark = "[x]"
			}
			cursor += mark
		}
		rows = append(rows, append([]string{cursor}, productRow(m.Products[i])...))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderTint).
		Headers("", "Product", "Serving", "Calories").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return tableHeadStyle
			}
			idx := m.Offset + row
			switch {
			case idx == m.Cursor:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case m.Marked[idx]:
				return lipgloss.NewStyle().Foreground(colorGreen)
			case col == 2 || col == 3:
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Products))))
	if n := len(m.marked()); n > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d selected", n)))
	}

	return b.String()
}

// pickProducts runs the interactive picker. It returns nil when the user quits
// without choosing.
func pickProducts(products []*nutrition.Record, multi bool) ([]*nutrition.Record, error) {
	final, err := tea.NewProgram(NewProductListModel(products, multi)).Run()
	if err != nil {
		return nil, err
	}
	fm, ok := final.(ProductListModel)
	if !ok {
		return nil, nil
	}
	return fm.Selected, nil
}

// =============================================================================
// Static table
// =============================================================================

// productsTable renders the catalog as a bordered table.
func productsTable(products []*nutrition.Record) string {
	rows := make([][]string, len(products))
	for i, p := range products {
		rows[i] = productRow(p)
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderTint).
		Headers("Product", "Serving", "Calories").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return tableHeadStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		}).
		Render()
}

func productRow(p *nutrition.Record) []string {
	return []string{p.Name, p.ServingSize, nutrition.FormatAmount(p.Calories())}
}
