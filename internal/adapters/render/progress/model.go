package progress

import (
	"errors"
	"io"

	"github.com/bnema/shipscan/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// Snapshot is everything the renderer needs about one receiving session.
type Snapshot struct {
	Shipment  *domain.ShipmentReference
	State     domain.SessionState
	Progress  domain.Progress
	Records   []domain.ScanRecord
	Exception *domain.ExceptionRecord
}

type RenderOptions struct {
	// RecentRecords caps how many accepted scans are listed, newest last.
	// Zero means show all of them.
	RecentRecords int
}

type renderReadyMsg struct{}

type model struct {
	snapshot Snapshot
	opts     RenderOptions
	styles   styles
	output   string
}

func newModel(snapshot Snapshot, opts RenderOptions) model {
	return model{
		snapshot: snapshot,
		opts:     opts,
		styles:   newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = renderView(m.snapshot, m.opts, m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

func Render(snapshot Snapshot, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(snapshot, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	final, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return final.output, nil
}
