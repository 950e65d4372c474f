package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Choice is one selectable entry of a Picker.
type Choice struct {
	Name string
	Info string
}

// Picker is a one-shot menu; Chosen is empty when the user quit.
type Picker struct {
	title   string
	choices []Choice
	cursor  int
	Chosen  string
}

func NewPicker(title string, choices []Choice) Picker {
	return Picker{title: title, choices: choices}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.choices)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.choices) > 0 {
			p.Chosen = p.choices[p.cursor].Name
		}
		return p, tea.Quit
	}
	return p, nil
}

func (p Picker) View() string {
	var s strings.Builder
	s.WriteString(Title.Render(p.title) + "\n\n")
	for i, c := range p.choices {
		line := fmt.Sprintf("%-12s %s", c.Name, Subtle.Render(c.Info))
		if i == p.cursor {
			s.WriteString(Selected.Render("> ") + Selected.Render(fmt.Sprintf("%-12s", c.Name)) + " " + Subtle.Render(c.Info) + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	s.WriteString("\n" + KeyHint.Render("↑/↓ move  enter select  q quit"))
	return Panel.Render(s.String())
}

// Pick shows the menu and returns the chosen name, or "" if the user quit.
func Pick(title string, choices []Choice) (string, error) {
	final, err := tea.NewProgram(NewPicker(title, choices)).Run()
	if err != nil {
		return "", err
	}
	return final.(Picker).Chosen, nil
}
