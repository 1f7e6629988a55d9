package terminal

import (
	"context"
	"time"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/surface"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
)

var channels = []entity.Channel{entity.ChannelSMS, entity.ChannelWhatsApp}

type tickMsg time.Time

// InlineModel renders the embedded verification stepper: phone entry, code
// entry and the verified confirmation.
type InlineModel struct {
	ctx    context.Context
	inline *surface.Inline

	phone   textinput.Model
	spinner spinner.Model
	styles  Styles
}

func NewInlineModel(ctx context.Context, inline *surface.Inline) InlineModel {
	styles := DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = "+966 5X XXX XXXX"
	ti.CharLimit = 20
	ti.Width = 24
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return InlineModel{
		ctx:     ctx,
		inline:  inline,
		phone:   ti,
		spinner: sp,
		styles:  styles,
	}
}

func (m InlineModel) Init() tea.Cmd {
	m.inline.Mount(m.ctx)

	return tea.Batch(textinput.Blink, m.spinner.Tick, tick())
}

func (m InlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tick()

	case actionMsg:
		if m.inline.View().Step != surface.StepPhone {
			m.phone.Blur()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			m.inline.Unmount()
			return m, tea.Quit
		}

		switch m.inline.View().Step {
		case surface.StepPhone:
			return m.phoneKey(msg)
		case surface.StepOTP:
			return m.codeKey(msg)
		case surface.StepVerified:
			if msg.Type == tea.KeyEnter {
				m.inline.Unmount()
				return m, tea.Quit
			}
		}
	}

	return m, nil
}

func (m InlineModel) phoneKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.inline.SetPhone(m.phone.Value())
		return m, m.run(m.inline.SendCode)
	case tea.KeyTab:
		cur := lo.IndexOf(channels, m.inline.View().Channel)
		m.inline.SetChannel(channels[(cur+1)%len(channels)])
		return m, nil
	}

	var cmd tea.Cmd
	m.phone, cmd = m.phone.Update(msg)
	m.inline.SetPhone(m.phone.Value())
	return m, cmd
}

func (m InlineModel) codeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return m, m.run(m.inline.Verify)
	case tea.KeyBackspace:
		m.inline.Backspace()
		return m, nil
	case tea.KeyLeft:
		m.inline.Left()
		return m, nil
	case tea.KeyRight:
		m.inline.Right()
		return m, nil
	case tea.KeyCtrlE:
		m.inline.ChangePhone()
		return m, m.phone.Focus()
	case tea.KeyRunes:
	default:
		return m, nil
	}

	if msg.Paste {
		if m.inline.Paste(string(msg.Runes)) {
			return m, m.run(m.inline.Verify)
		}
		return m, nil
	}

	if len(msg.Runes) == 1 && msg.Runes[0] == 'r' {
		return m, m.run(m.inline.Resend)
	}

	for _, r := range msg.Runes {
		if m.inline.Type(r) {
			return m, m.run(m.inline.Verify)
		}
	}
	return m, nil
}

func (m InlineModel) View() string {
	v := m.inline.View()

	var busy string
	if v.Busy {
		busy = m.spinner.View() + " Please wait..."
	}

	switch v.Step {
	case surface.StepVerified:
		return m.styles.Frame.Render(m.styles.lines(
			m.styles.Title.Render("Phone verification"),
			m.styles.Success.Render("✓ "+v.MaskedPhone+" verified"),
			m.styles.Muted.Render("enter continue"),
		))

	case surface.StepOTP:
		var resend string
		switch {
		case v.MaxReached:
			resend = m.styles.Warning.Render("Maximum attempts reached")
		case v.CanResend:
			resend = m.styles.Muted.Render("Press r to resend the code")
		case v.Countdown != "":
			resend = m.styles.Muted.Render("Resend code in " + v.Countdown)
		}

		return m.styles.Frame.Render(m.styles.lines(
			m.styles.Title.Render("Phone verification"),
			styled(m.styles.Success, v.Notice),
			m.styles.renderCells(v.Cells, v.Focus, v.Busy),
			busy,
			styled(m.styles.Error, v.ErrorMessage),
			resend,
			m.styles.Muted.Render("enter verify • r resend • ctrl+e change number • esc quit"),
		))
	}

	return m.styles.Frame.Render(m.styles.lines(
		m.styles.Title.Render("Phone verification"),
		"Phone number\n"+m.phone.View(),
		"Send code via "+channelLabel(v.Channel),
		busy,
		styled(m.styles.Error, v.ErrorMessage),
		m.styles.Muted.Render("enter send code • tab switch channel • esc quit"),
	))
}

func (m InlineModel) run(fn func(context.Context) bool) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		fn(ctx)
		return actionMsg{}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
