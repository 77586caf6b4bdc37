package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/tup/lang"
	"github.com/ardnew/tup/log"
)

// editSourceMsg is sent when source editing completes successfully.
type editSourceMsg struct{ source string }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after an error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-parse error.
type editErrorMsg struct{ err error }

const prompt = "➜ "

func helpMessage() string {
	return `
Commands:

  :help        Print this message
  :list        List contexts and their snapshot counts
  :use <name>  Explore the named context
  :next        Select the next snapshot
  :prev        Select the previous snapshot
  :block       Expand every code line of the context in the current snapshot
  :edit        Edit source in external $EDITOR
  :clear       Clear screen
  :quit        Exit REPL

Usage:
  Type a code line to expand it against the current snapshot
  The expansion is previewed below the input as you type
  Press Ctrl+N / Ctrl+P to select the next / previous snapshot
  Press Tab / Shift-Tab inside ${...} to cycle through completions
  Press Esc to abandon a completion
  Use Up/Down arrows for history navigation
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))

	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = suggestionStyle.Bold(true)
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)

	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// formatLine formats the echo of a submitted line.
func formatLine(input string) string {
	return promptStyle.Render(prompt) + inputStyle.Render(input)
}

// Config configures a REPL session.
type Config struct {
	Context  string        // context to explore; empty selects the first
	CacheDir string        // directory of the history file; empty keeps history in memory
	Logger   log.Logger    // trace records of the session
	Options  []lang.Option // parser and expander options

	// ProgramOptions are passed to the bubbletea program after
	// [tea.WithContext].
	ProgramOptions []tea.ProgramOption
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	session      *session
	opts         []lang.Option
	logger       log.Logger
	history      *History
	historyIdx   int
	draft        string        // input before history navigation began
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
}

// Run reads a source from reader and explores its snapshots interactively.
func Run(ctx context.Context, reader io.Reader, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := cfg.Logger

	logger.TraceContext(ctx, "repl start",
		slog.String("cache_dir", cfg.CacheDir),
		slog.String("context", cfg.Context),
		slog.Bool("has_source", reader != nil),
	)

	if reader == nil {
		return ErrNoSource
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return lang.ErrReadInput.Wrap(err)
	}

	s, err := newSession(ctx, string(data), cfg.Context, cfg.Options...)
	if err != nil {
		return err
	}
	defer s.close()

	logger.TraceContext(ctx, "repl source loaded",
		slog.Int("context_count", len(s.Contexts())),
		slog.String("context", s.ContextName()),
		slog.Uint64("snapshots", s.Total()),
	)

	var historyPath string
	if cfg.CacheDir != "" {
		historyPath = filepath.Join(cfg.CacheDir, baseHistory)
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	m := newModel(ctx, s, history, logger, cfg.Options)

	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, cfg.ProgramOptions...)

	final, err := tea.NewProgram(m, opts...).Run()

	// The session may have been replaced by an edit.
	if fm, ok := final.(model); ok && fm.session != s {
		fm.session.close()
	}

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	s *session,
	history *History,
	logger log.Logger,
	opts []lang.Option,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Placeholder = "value=${x}"
	ti.CharLimit = 4096
	ti.Width = defaultWidth - utf8.RuneCountInString(prompt) - 1
	ti.Focus()

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		session:    s,
		opts:       opts,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(1, msg.Width-utf8.RuneCountInString(prompt)-1)

		return m, nil

	case editSourceMsg:
		return m.reload(msg.source)

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		return m, tea.Println(hintStyle.Render("edit discarded"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.statusView())
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	b.WriteString(m.hintView())

	return b.String()
}

// statusView renders the active context, the position of the selected
// snapshot, and its bindings.
func (m model) statusView() string {
	name := m.session.ContextName()
	if name == "" {
		name = "(no context)"
	}

	pos, total := m.session.Position()
	if pos == 0 {
		return statusStyle.Render(name) + " " + hintStyle.Render("no snapshots")
	}

	return statusStyle.Render(fmt.Sprintf("%s %d/%d", name, pos, total)) +
		" " + hintStyle.Render(m.session.Current().String())
}

// hintView renders the line below the input: completion candidates, a call
// signature, the live expansion of the input, or a usage hint, whichever
// applies first.
func (m model) hintView() string {
	if len(m.matches) > 0 {
		return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)
	}

	input := m.input.Value()
	cursor := m.cursorByte()

	if start := markerStart(input, cursor); start >= 0 {
		if call, ok := detectFunctionCall(input[start:cursor], cursor-start); ok {
			if params, ok := signature(call.name); ok {
				return renderSignatureHint(call.name, params, call.argIndex)
			}
		}
	}

	if strings.HasPrefix(input, commandPrefix) || !lang.HasMarker(input) {
		return hintStyle.Render(":help for commands, Ctrl+N/Ctrl+P to change snapshot")
	}

	if m.session.Empty() {
		return hintStyle.Render("no snapshot to expand against")
	}

	out, err := m.session.Expand(input)
	if err != nil {
		return errorStyle.Render(err.Error())
	}

	return resultStyle.Render(out)
}

// cursorByte returns the byte offset of the input cursor.
func (m model) cursorByte() int {
	value := []rune(m.input.Value())
	pos := min(m.input.Position(), len(value))

	return len(string(value[:pos]))
}

// setValue replaces the input text and places the cursor at byte offset at.
func (m *model) setValue(text string, at int) {
	m.input.SetValue(text)
	m.input.SetCursor(utf8.RuneCountInString(text[:at]))
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.resetCompletion()
		m.historyIdx = m.history.Len()

		return m, nil

	case tea.KeyCtrlD:
		m.quitting = true

		return m, tea.Quit

	case tea.KeyEnter:
		return m.executeInput()

	case tea.KeyTab:
		m.cycle(1)

		return m, nil

	case tea.KeyShiftTab:
		m.cycle(-1)

		return m, nil

	case tea.KeyEsc:
		if m.tabActive {
			m.setValue(m.preTabText, m.preTabCursor)
		}

		m.resetCompletion()

		return m, nil

	case tea.KeyUp:
		return m.historyPrev(), nil

	case tea.KeyDown:
		return m.historyNext(), nil

	case tea.KeyCtrlN:
		m.session.Next()

		return m, nil

	case tea.KeyCtrlP:
		m.session.Prev()

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	m.tabActive = false
	m.refreshMatches()

	return m, cmd
}

// resetCompletion abandons any completion in progress.
func (m *model) resetCompletion() {
	m.matches = nil
	m.tabActive = false
	m.suggIdx = -1
}

// refreshMatches recomputes the candidates for the word at the cursor.
func (m *model) refreshMatches() {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()
	m.suggIdx = -1
}

// cycle selects the next (dir > 0) or previous candidate and substitutes it
// for the current word.
func (m *model) cycle(dir int) {
	if !m.tabActive {
		m.refreshMatches()

		if len(m.matches) == 0 {
			return
		}

		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.cursorByte()
		m.suggIdx = -1
	}

	n := len(m.matches)
	m.suggIdx = ((m.suggIdx+dir)%n + n) % n

	m.replaceCurrentWord(m.matches[m.suggIdx].Str)
}

// replaceCurrentWord substitutes s for the word under completion.
func (m *model) replaceCurrentWord(s string) {
	value := m.input.Value()
	text := value[:m.wordStart] + s + value[m.wordEnd:]

	m.wordEnd = m.wordStart + len(s)
	m.setValue(text, m.wordEnd)
}

func (m model) executeInput() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())

	m.input.SetValue("")
	m.resetCompletion()

	if input == "" {
		return m, nil
	}

	if err := m.history.Add(input); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if cmd, ok := strings.CutPrefix(input, commandPrefix); ok {
		return m.executeCommand(input, cmd)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl expand",
		slog.String("input", input),
		slog.String("snapshot", m.session.Current().String()),
	)

	echo := tea.Println(formatLine(input))

	result, err := m.session.Expand(input)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(result)))
}

func (m model) executeCommand(input, line string) (tea.Model, tea.Cmd) {
	echo := tea.Println(formatLine(input))

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return m, echo
	}

	name, args := fields[0], fields[1:]

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", name),
		slog.Any("args", args),
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.listContexts()))

	case "u", "use":
		if len(args) != 1 {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("usage: :use <context>")))
		}

		if err := m.session.use(args[0]); err != nil {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
		}

		return m, echo

	case "n", "next":
		m.session.Next()

		return m, echo

	case "p", "prev":
		m.session.Prev()

		return m, echo

	case "b", "block":
		lines, err := m.session.Block()
		if err != nil {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
		}

		return m, tea.Sequence(echo, tea.Println(resultStyle.Render(strings.Join(lines, "\n"))))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		err := ErrUnknownAction.With(slog.String("command", name))

		return m, tea.Sequence(echo, tea.Println(errorStyle.Render(err.Error()+" (try :help)")))
	}
}

// edit hands the terminal to the user's editor.
func (m model) edit() tea.Cmd {
	cmd := &editSourceCommand{
		source:  m.session.source,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if cmd.newSource == "" {
			return editCancelledMsg{}
		}

		return editSourceMsg{source: cmd.newSource}
	})
}

// reload replaces the session with one over source, keeping the active
// context if it still exists.
func (m model) reload(source string) (tea.Model, tea.Cmd) {
	s, err := newSession(m.ctxFunc(), source, m.session.ContextName(), m.opts...)
	if errors.Is(err, ErrNoContext) {
		s, err = newSession(m.ctxFunc(), source, "", m.opts...)
	}

	if err != nil {
		return m, tea.Println(errorStyle.Render("error: " + err.Error()))
	}

	m.session.close()
	m.session = s

	return m, tea.Println(hintStyle.Render("source reloaded"))
}

func (m model) listContexts() string {
	var b strings.Builder

	active := m.session.active

	for _, c := range m.session.Contexts() {
		marker := "  "
		if c == active {
			marker = "* "
		}

		fmt.Fprintf(&b, "%s%s %s\n", marker, c.Name, hintStyle.Render(
			fmt.Sprintf("line %d, %d locals, %d code lines, %d snapshots",
				c.Line, len(c.Variables), len(c.CodeLines), c.Count()),
		))
	}

	if b.Len() == 0 {
		return hintStyle.Render("no contexts")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func (m model) historyPrev() model {
	if m.historyIdx == m.history.Len() {
		m.draft = m.input.Value()
	}

	if m.historyIdx > 0 {
		m.historyIdx--

		if entry, err := m.history.Entry(m.historyIdx); err == nil {
			m.setValue(entry, len(entry))
		}
	}

	m.resetCompletion()

	return m
}

func (m model) historyNext() model {
	if m.historyIdx < m.history.Len()-1 {
		m.historyIdx++

		if entry, err := m.history.Entry(m.historyIdx); err == nil {
			m.setValue(entry, len(entry))
		}
	} else if m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.setValue(m.draft, len(m.draft))
	}

	m.resetCompletion()

	return m
}
