package terminal

import (
	"context"
	"fmt"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/surface"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/usecase"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type coordinator interface {
	Subscribe(ctx context.Context) <-chan usecase.Event
	OpenSession(ctx context.Context, in usecase.OpenSessionInput) bool
	Snapshot() entity.Session
	VerifyCode(ctx context.Context, code string) bool
	ResendCode(ctx context.Context) bool
	CloseSession(ctx context.Context)
}

type (
	eventMsg      usecase.Event
	streamDoneMsg struct{}
	actionMsg     struct{}
)

// ModalModel renders the global verification dialog in a terminal. It opens
// the session on start and quits once the dialog is dismissed.
type ModalModel struct {
	ctx    context.Context
	coord  coordinator
	open   usecase.OpenSessionInput
	modal  *surface.Modal
	events <-chan usecase.Event

	spinner spinner.Model
	styles  Styles
	toast   entity.Toast
	shown   bool
	result  entity.Status
}

func NewModalModel(ctx context.Context, coord coordinator, open usecase.OpenSessionInput) ModalModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	styles := DefaultStyles()
	sp.Style = styles.Spinner

	return ModalModel{
		ctx:     ctx,
		coord:   coord,
		open:    open,
		modal:   surface.NewModal(coord),
		events:  coord.Subscribe(ctx),
		spinner: sp,
		styles:  styles,
	}
}

// Result is the status the session had when the dialog went away.
func (m ModalModel) Result() entity.Status {
	return m.result
}

func (m ModalModel) Init() tea.Cmd {
	ctx, coord, open := m.ctx, m.coord, m.open

	return tea.Batch(
		waitForEvent(m.events),
		m.spinner.Tick,
		func() tea.Msg {
			coord.OpenSession(ctx, open)
			return actionMsg{}
		},
	)
}

func (m ModalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		if msg.Type == usecase.EventToast {
			m.toast = msg.Toast
			return m, waitForEvent(m.events)
		}

		m.modal.Sync(msg.Session)
		if msg.Session.Visible {
			m.shown = true
		} else if m.shown {
			m.result = msg.Session.Status
			return m, tea.Quit
		}
		return m, waitForEvent(m.events)

	case streamDoneMsg:
		return m, tea.Quit

	case actionMsg:
		return m, nil

	case spinner.TickMsg:
		// a slow reader can miss the closing event, the snapshot cannot
		if s := m.coord.Snapshot(); m.shown && !s.Visible {
			m.modal.Sync(s)
			m.result = s.Status
			return m, tea.Quit
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m ModalModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.coord.CloseSession(m.ctx)
		m.result = m.lastStatus()
		return m, tea.Quit
	case tea.KeyEsc:
		m.modal.Close(m.ctx)
		return m, nil
	case tea.KeyEnter:
		return m, m.run(m.modal.Submit)
	case tea.KeyBackspace:
		m.modal.Backspace()
		return m, nil
	case tea.KeyLeft:
		m.modal.Left()
		return m, nil
	case tea.KeyRight:
		m.modal.Right()
		return m, nil
	case tea.KeyRunes:
	default:
		return m, nil
	}

	if msg.Paste {
		if m.modal.Paste(string(msg.Runes)) {
			return m, m.run(m.modal.Submit)
		}
		return m, nil
	}

	if len(msg.Runes) == 1 && msg.Runes[0] == 'r' {
		return m, m.run(m.modal.Resend)
	}

	for _, r := range msg.Runes {
		if m.modal.Type(r) {
			return m, m.run(m.modal.Submit)
		}
	}
	return m, nil
}

func (m ModalModel) View() string {
	v := m.modal.View()
	if !v.Visible && !m.shown {
		return m.styles.Frame.Render(m.spinner.View() + " Opening verification...")
	}

	var status string
	switch {
	case v.Verified:
		status = m.styles.Success.Render("✓ " + entity.MsgVerified)
	case v.Status == entity.StatusSending:
		status = m.spinner.View() + " Sending code..."
	case v.Status == entity.StatusVerifying:
		status = m.spinner.View() + " Verifying..."
	}

	var resend string
	switch {
	case v.MaxReached:
		resend = m.styles.Warning.Render("Maximum attempts reached")
	case v.CanResend:
		resend = m.styles.Muted.Render("Didn't get the code? Press r to resend")
	case v.Countdown != "":
		resend = m.styles.Muted.Render("Resend code in " + v.Countdown)
	}

	help := "enter verify • r resend"
	if v.Closable {
		help += " • esc close"
	}

	return m.styles.Frame.Render(m.styles.lines(
		m.styles.Title.Render("Verify your phone number"),
		fmt.Sprintf("Enter the %d-digit code sent via %s to %s", len(v.Cells), channelLabel(v.Channel), v.MaskedPhone),
		m.styles.renderCells(v.Cells, v.Focus, v.Disabled),
		status,
		styled(m.styles.Error, v.ErrorMessage),
		resend,
		styled(m.styles.Muted, v.Attempts),
		m.renderToast(),
		m.styles.Muted.Render(help),
	))
}

func (m ModalModel) renderToast() string {
	switch m.toast.Level {
	case entity.ToastSuccess:
		return styled(m.styles.Success, m.toast.Message)
	case entity.ToastError:
		return styled(m.styles.Error, m.toast.Message)
	case entity.ToastWarning:
		return styled(m.styles.Warning, m.toast.Message)
	default:
		return styled(m.styles.Body, m.toast.Message)
	}
}

func (m ModalModel) lastStatus() entity.Status {
	return m.coord.Snapshot().Status
}

func (m ModalModel) run(fn func(context.Context) bool) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		fn(ctx)
		return actionMsg{}
	}
}

func waitForEvent(events <-chan usecase.Event) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-events
		if !ok {
			return streamDoneMsg{}
		}
		return eventMsg(evt)
	}
}

func channelLabel(c entity.Channel) string {
	if c == entity.ChannelWhatsApp {
		return "WhatsApp"
	}
	return "SMS"
}
