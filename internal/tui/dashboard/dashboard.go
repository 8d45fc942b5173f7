// ABOUTME: Bubbletea dashboard showing the signed-in user and their wallets
// ABOUTME: Refreshes on demand and exits cleanly when the session expires

package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0x5chn0uf/SmartWalletFX-sub000/internal/api"
	"github.com/0x5chn0uf/SmartWalletFX-sub000/internal/tui/styles"
)

// walletsLoadedMsg is sent when the wallet list fetch completes
type walletsLoadedMsg struct {
	wallets []api.Wallet
	err     error
}

// SessionExpiredMsg is sent when the backend session can no longer be
// refreshed; the dashboard shows a sign-in hint and quits.
type SessionExpiredMsg struct{}

// Model is the dashboard TUI model
type Model struct {
	client     *api.Client
	user       api.User
	wallets    []api.Wallet
	spinner    spinner.Model
	loading    bool
	expired    bool
	err        error
	width      int
	height     int
	lastUpdate time.Time
}

// New creates a dashboard for an already-authenticated user
func New(client *api.Client, user api.User) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &Model{
		client:  client,
		user:    user,
		spinner: sp,
		loading: true,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadWallets())
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if !m.loading && !m.expired {
				m.loading = true
				m.err = nil
				return m, tea.Batch(m.spinner.Tick, m.loadWallets())
			}
		}
		return m, nil

	case walletsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.wallets = msg.wallets
		m.lastUpdate = time.Now()
		return m, nil

	case SessionExpiredMsg:
		m.expired = true
		m.loading = false
		return m, tea.Quit

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render("SmartWalletFX"))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render("Signed in as " + m.user.Username))
	sb.WriteString("\n\n")

	switch {
	case m.expired:
		sb.WriteString(styles.StatusError.Render("Session expired."))
		sb.WriteString("\n")
		sb.WriteString("Run 'smartwallet login' to sign in again.\n")
	case m.loading:
		sb.WriteString(m.spinner.View())
		sb.WriteString(" Loading wallets...\n")
	case m.err != nil:
		sb.WriteString(styles.StatusError.Render("Error: " + m.err.Error()))
		sb.WriteString("\n")
	default:
		sb.WriteString(m.renderWallets())
	}

	sb.WriteString(styles.Help.Render(m.footer()))
	return styles.Panel.Render(sb.String())
}

// renderWallets produces the wallet table body
func (m *Model) renderWallets() string {
	if len(m.wallets) == 0 {
		return "No wallets yet. Add one from the web app.\n"
	}

	var sb strings.Builder
	sb.WriteString(styles.TableHeader.Render(fmt.Sprintf("%-24s %-8s %14s %8s", "NAME", "CUR", "BALANCE", "ASSETS")))
	sb.WriteString("\n")

	var total float64
	for _, w := range m.wallets {
		sb.WriteString(styles.TableRow.Render(
			fmt.Sprintf("%-24s %-8s %14.2f %8d", truncate(w.Name, 24), w.Currency, w.Balance, w.AssetCount)))
		sb.WriteString("\n")
		total += w.Balance
	}

	sb.WriteString("\n")
	sb.WriteString(styles.StatusOK.Render(fmt.Sprintf("Total: %.2f", total)))
	sb.WriteString("\n")
	return sb.String()
}

func (m *Model) footer() string {
	parts := []string{"r Refresh", "q Quit"}
	if !m.lastUpdate.IsZero() {
		parts = append(parts, "updated "+m.lastUpdate.Format("15:04:05"))
	}
	return strings.Join(parts, "  ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

// loadWallets creates a command that fetches the wallet list
func (m *Model) loadWallets() tea.Cmd {
	return func() tea.Msg {
		wallets, err := m.client.Wallets(context.Background())
		return walletsLoadedMsg{wallets: wallets, err: err}
	}
}

// Run starts the dashboard program. The client's session-expired handler
// is pointed at the program so an unrecoverable refresh failure surfaces
// as a message instead of a mid-render error.
func Run(client *api.Client, user api.User) error {
	m := New(client, user)
	p := tea.NewProgram(m, tea.WithAltScreen())

	client.SetSessionExpiredHandler(func(error) {
		p.Send(SessionExpiredMsg{})
	})
	defer client.SetSessionExpiredHandler(nil)

	_, err := p.Run()
	if err != nil {
		return err
	}
	if m.expired {
		return api.ErrSessionExpired
	}
	return nil
}
