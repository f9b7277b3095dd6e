package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	logging "github.com/ipfs/go-log/v2"

	"github.com/nconklindev/qtranslate/internal/i18n"
	"github.com/nconklindev/qtranslate/internal/lang"
	"github.com/nconklindev/qtranslate/internal/qcode"
	"github.com/nconklindev/qtranslate/internal/session"
	"github.com/nconklindev/qtranslate/internal/sheet"
	"github.com/nconklindev/qtranslate/internal/translator"
	"github.com/nconklindev/qtranslate/internal/types"
	"github.com/nconklindev/qtranslate/internal/workbook"
)

var log = logging.Logger("ui")

type state int

const (
	stateFilePicker state = iota
	stateSheetSelection
	stateSourceColumn
	stateSourceLang
	stateTargetSelection
	stateNewColumn
	stateProcessing
	stateSheetDone
	stateSaving
	stateComplete
	stateError
)

type Model struct {
	state        state
	filepicker   filepicker.Model
	input        textinput.Model
	selectedFile string
	outputFile   string
	translator   *translator.Translator
	session      *session.Session
	sheets       []string
	sheet        *types.SheetData
	columns      []string
	sourceCol    int
	sourceLang   lang.Code
	targets      map[int]lang.Code
	cursor       int
	stats        []types.ColumnStats
	result       *types.TranslationResult
	err          error
	width        int
	height       int
	progress     progress.Model
	progressChan chan float64
	resultChan   chan translationResultMsg
	cancel       context.CancelFunc
}

type fileLoadedMsg struct {
	wb  *types.Workbook
	err error
}

type translationResultMsg struct {
	data  *types.SheetData
	stats []types.ColumnStats
	err   error
}

type translationCompleteMsg translationResultMsg

type savedMsg struct {
	path string
	err  error
}

type progressMsg float64

type waitForProgressMsg struct{}

// InitialModel builds the UI. When file is not empty the file picker is
// skipped and the file is loaded right away.
func InitialModel(tr *translator.Translator, file string) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".xlsx", ".csv"}
	fp.CurrentDirectory, _ = os.Getwd()

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(accent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(highlight)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(highlight)
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(muted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(accent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(muted)

	ti := textinput.New()
	ti.Placeholder = i18n.T("Column name")
	ti.CharLimit = 128

	prog := progress.New(progress.WithGradient("#2E86DE", "#54A0FF"))

	return Model{
		state:        stateFilePicker,
		filepicker:   fp,
		input:        ti,
		selectedFile: file,
		translator:   tr,
		targets:      make(map[int]lang.Code),
		sourceLang:   lang.All()[0],
		progress:     prog,
	}
}

func (m Model) Init() tea.Cmd {
	if m.selectedFile != "" {
		return m.loadFile(m.selectedFile)
	}
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		height := msg.Height - 14
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)

		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case fileLoadedMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.session = session.New(msg.wb)
		return m.enterSheetSelection()

	case translationCompleteMsg:
		m.cancel = nil
		if msg.err != nil {
			return m.fail(msg.err)
		}
		if err := m.session.Commit(msg.data); err != nil {
			return m.fail(err)
		}
		m.stats = append(m.stats, msg.stats...)
		if m.session.Done() {
			return m.save()
		}
		m.state = stateSheetDone
		return m, nil

	case savedMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.result = &types.TranslationResult{
			InputFile:  m.selectedFile,
			OutputFile: msg.path,
			Sheets:     m.session.Translated(),
			Columns:    m.stats,
		}
		m.state = stateComplete
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateProcessing {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)
	}

	switch m.state {
	case stateFilePicker:
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			return m, m.loadFile(path)
		}
		return m, cmd

	case stateNewColumn:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch m.state {
	case stateFilePicker:
		if key == "q" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)
		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			return m, m.loadFile(path)
		}
		return m, cmd

	case stateSheetSelection:
		switch key {
		case "q":
			return m, tea.Quit
		case "up", "k", "down", "j":
			m.cursor = moveCursor(m.cursor, key, len(m.sheets))
		case "enter":
			return m.selectSheet(m.sheets[m.cursor])
		}

	case stateSourceColumn:
		switch key {
		case "q":
			return m, tea.Quit
		case "esc":
			return m.enterSheetSelection()
		case "up", "k", "down", "j":
			m.cursor = moveCursor(m.cursor, key, len(m.columns))
		case "enter":
			m.sourceCol = m.cursor
			m.cursor = langIndex(m.sourceLang)
			m.state = stateSourceLang
		}

	case stateSourceLang:
		switch key {
		case "q":
			return m, tea.Quit
		case "esc":
			m.cursor = m.sourceCol
			m.state = stateSourceColumn
		case "up", "k", "down", "j":
			m.cursor = moveCursor(m.cursor, key, len(lang.All()))
		case "enter":
			m.sourceLang = lang.All()[m.cursor]
			m.cursor = 0
			m.state = stateTargetSelection
		}

	case stateTargetSelection:
		switch key {
		case "q":
			return m, tea.Quit
		case "esc":
			m.cursor = langIndex(m.sourceLang)
			m.state = stateSourceLang
		case "up", "k", "down", "j":
			m.cursor = moveCursor(m.cursor, key, len(m.columns))
		case " ":
			m.toggleTarget(m.cursor)
		case "l":
			if to, ok := m.targets[m.cursor]; ok {
				next := to.Next()
				if next == m.sourceLang {
					next = next.Next()
				}
				m.targets[m.cursor] = next
			}
		case "n":
			m.input.Reset()
			m.state = stateNewColumn
			cmd := m.input.Focus()
			return m, cmd
		case "enter":
			if len(m.targets) > 0 {
				m.state = stateProcessing
				return m.translateSheet()
			}
		}

	case stateNewColumn:
		switch key {
		case "esc":
			m.input.Blur()
			m.state = stateTargetSelection
		case "enter":
			m.input.Blur()
			m.addColumn(strings.TrimSpace(m.input.Value()))
			m.state = stateTargetSelection
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

	case stateSheetDone:
		switch key {
		case "q":
			return m, tea.Quit
		case "c":
			return m.enterSheetSelection()
		case "s", "enter":
			return m.save()
		}

	case stateComplete, stateError:
		switch key {
		case "q", "enter", "esc":
			return m, tea.Quit
		}
	}

	return m, nil
}

func moveCursor(cursor int, key string, n int) int {
	switch key {
	case "up", "k":
		if cursor > 0 {
			cursor--
		}
	case "down", "j":
		if cursor < n-1 {
			cursor++
		}
	}
	return cursor
}

func langIndex(c lang.Code) int {
	for i, l := range lang.All() {
		if l == c {
			return i
		}
	}
	return 0
}

func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	log.Errorw("translation run failed", "file", m.selectedFile, "error", err)
	m.err = err
	m.state = stateError
	return m, nil
}

func (m Model) enterSheetSelection() (tea.Model, tea.Cmd) {
	m.sheets = m.session.Available()
	if len(m.sheets) == 0 {
		return m.save()
	}

	m.cursor = 0
	for i, name := range m.sheets {
		if name == m.session.Selected() {
			m.cursor = i
		}
	}
	m.state = stateSheetSelection
	return m, nil
}

func (m Model) selectSheet(name string) (tea.Model, tea.Cmd) {
	if err := m.session.Select(name); err != nil {
		return m.fail(err)
	}
	data, err := m.session.Sheet(name)
	if err != nil {
		return m.fail(err)
	}
	if len(data.Headers) == 0 {
		return m.fail(fmt.Errorf("%s", i18n.T("sheet %q has no columns", name)))
	}

	m.sheet = data
	m.columns = append([]string(nil), data.Headers...)
	m.targets = make(map[int]lang.Code)
	m.sourceCol = 0
	m.cursor = 0
	m.state = stateSourceColumn
	return m, nil
}

// defaultTarget picks the first language that is not the source language.
func (m Model) defaultTarget() lang.Code {
	for _, l := range lang.All() {
		if l != m.sourceLang {
			return l
		}
	}
	return m.sourceLang
}

// toggleTarget selects or clears a target column. The source column cannot
// be a target: later targets would read the text already translated.
func (m *Model) toggleTarget(col int) {
	if col == m.sourceCol {
		return
	}
	if _, ok := m.targets[col]; ok {
		delete(m.targets, col)
		return
	}
	m.targets[col] = m.defaultTarget()
}

func (m *Model) addColumn(name string) {
	if name == "" {
		return
	}
	for i, c := range m.columns {
		if c == name {
			m.cursor = i
			return
		}
	}
	m.columns = append(m.columns, name)
	m.cursor = len(m.columns) - 1
	m.targets[m.cursor] = m.defaultTarget()
}

type target struct {
	column string
	to     lang.Code
}

func (m Model) orderedTargets() []target {
	idx := make([]int, 0, len(m.targets))
	for i := range m.targets {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	out := make([]target, 0, len(idx))
	for _, i := range idx {
		out = append(out, target{column: m.columns[i], to: m.targets[i]})
	}
	return out
}

func (m Model) translateSheet() (Model, tea.Cmd) {
	m.progressChan = make(chan float64, 100)
	m.resultChan = make(chan translationResultMsg, 1)

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	data := m.sheet
	source := m.columns[m.sourceCol]
	from := m.sourceLang
	targets := m.orderedTargets()
	tr := m.translator

	progressChan := m.progressChan
	resultChan := m.resultChan

	cmd := tea.Batch(
		func() tea.Msg {
			go func() {
				res := translateTargets(ctx, tr, data, source, from, targets, progressChan)

				resultChan <- res

				close(progressChan)
				close(resultChan)
			}()

			return waitForProgressMsg{}
		},
		waitForProgress(m.progressChan, m.resultChan),
		m.progress.Init(),
	)

	return m, cmd
}

// translateTargets fills every target column in turn. Each column reads the
// source column of the previous result, so all targets end up in one sheet.
func translateTargets(ctx context.Context, tr *translator.Translator, data *types.SheetData, source string, from lang.Code,
	targets []target, progressChan chan<- float64) translationResultMsg {

	totalOps := len(targets) * len(data.Rows)
	var stats []types.ColumnStats

	for i, t := range targets {
		offset := i * len(data.Rows)
		out, st, err := sheet.TranslateColumn(ctx, data, source, t.column, from, t.to, tr, func(done, _ int) {
			if progressChan != nil && totalOps > 0 {
				select {
				case progressChan <- float64(offset+done) / float64(totalOps):
				default:
				}
			}
		})
		if err != nil {
			return translationResultMsg{err: err}
		}
		log.Infow("column translated", "sheet", data.Name, "source", source, "target", t.column,
			"from", from, "to", t.to, "translated", st.Translated, "failed", st.Failed, "skipped", st.Skipped)
		stats = append(stats, *st)
		data = out
	}

	return translationResultMsg{data: data, stats: stats}
}

func waitForProgress(progressChan chan float64, resultChan chan translationResultMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			res, ok := <-resultChan
			if ok {
				return translationCompleteMsg(res)
			}
			return nil
		}

		return progressMsg(p)
	}
}

func (m Model) save() (Model, tea.Cmd) {
	m.state = stateSaving
	if m.outputFile == "" {
		m.outputFile = workbook.OutputPath(m.selectedFile)
	}

	wb := m.session.Workbook()
	path := m.outputFile
	return m, func() tea.Msg {
		return savedMsg{path: path, err: workbook.Save(wb, path)}
	}
}

func (m Model) loadFile(path string) tea.Cmd {
	return func() tea.Msg {
		wb, err := workbook.Open(path)
		return fileLoadedMsg{wb: wb, err: err}
	}
}

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case stateSheetSelection:
		return m.viewSheetSelection()
	case stateSourceColumn:
		return m.viewSourceColumn()
	case stateSourceLang:
		return m.viewSourceLang()
	case stateTargetSelection, stateNewColumn:
		return m.viewTargetSelection()
	case stateProcessing:
		return m.viewProcessing()
	case stateSheetDone:
		return m.viewSheetDone()
	case stateSaving:
		return BoxStyle.Render(TitleStyle.Render(i18n.T("Saving workbook...")))
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(i18n.T("Questionnaire Translator")))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(i18n.T("Select an XLSX or CSV questionnaire to translate")))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render(i18n.T("Press q to quit")))

	return s.String()
}

func (m Model) header(title string) string {
	var s strings.Builder
	s.WriteString(TitleStyle.Render(title))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(i18n.T("File: %s", filepath.Base(m.selectedFile))))
	s.WriteString("\n")
	return s.String()
}

func renderList(items []string, cursor int, marks map[int]string) string {
	var s strings.Builder
	for i, item := range items {
		pointer := " "
		if cursor == i {
			pointer = ">"
		}
		line := fmt.Sprintf("%s %s", pointer, item)
		if mark, ok := marks[i]; ok {
			line = fmt.Sprintf("%s [%s] %s", pointer, mark, item)
		} else if marks != nil {
			line = fmt.Sprintf("%s [ ] %s", pointer, item)
		}

		switch {
		case cursor == i:
			line = SelectedStyle.Render(line)
		case marks[i] != "":
			line = CheckedStyle.Render(line)
		default:
			line = UnselectedStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}
	return s.String()
}

func (m Model) viewSheetSelection() string {
	var s strings.Builder
	s.WriteString(m.header(i18n.T("Select a sheet to translate")))

	if done := m.session.Translated(); len(done) > 0 {
		s.WriteString(SuccessStyle.Render(i18n.T("Translated: %s", strings.Join(done, ", "))))
		s.WriteString("\n\n")
	}

	s.WriteString(renderList(m.sheets, m.cursor, nil))
	s.WriteString(HelpStyle.Render(i18n.T("↑/↓: navigate • enter: select • q: quit")))
	return BoxStyle.Render(s.String())
}

func (m Model) viewSourceColumn() string {
	var s strings.Builder
	s.WriteString(m.header(i18n.T("Select the column with the text to translate")))
	s.WriteString(SubtitleStyle.Render(i18n.T("Sheet: %s", m.sheet.Name)))
	s.WriteString("\n")

	s.WriteString(renderList(m.columns, m.cursor, nil))
	s.WriteString(HelpStyle.Render(i18n.T("↑/↓: navigate • enter: select • esc: back • q: quit")))
	return BoxStyle.Render(s.String())
}

func langLine(c lang.Code) string {
	return fmt.Sprintf("%s (%s, %s)", c.Label(), c.Name(), c)
}

func (m Model) viewSourceLang() string {
	var s strings.Builder
	s.WriteString(m.header(i18n.T("Select the source language")))
	s.WriteString(SubtitleStyle.Render(i18n.T("Column: %s", m.columns[m.sourceCol])))
	s.WriteString("\n")

	items := make([]string, 0, len(lang.All()))
	for _, c := range lang.All() {
		items = append(items, langLine(c))
	}
	s.WriteString(renderList(items, m.cursor, nil))
	s.WriteString(HelpStyle.Render(i18n.T("↑/↓: navigate • enter: select • esc: back • q: quit")))
	return BoxStyle.Render(s.String())
}

func (m Model) viewTargetSelection() string {
	var s strings.Builder
	s.WriteString(m.header(i18n.T("Select the columns that receive the translation")))
	s.WriteString(SubtitleStyle.Render(i18n.T("Source: %s (%s)", m.columns[m.sourceCol], m.sourceLang.Label())))
	s.WriteString("\n")

	items := make([]string, len(m.columns))
	marks := make(map[int]string)
	for i, c := range m.columns {
		items[i] = c
		if i == m.sourceCol {
			items[i] = c + " " + i18n.T("(source)")
		}
		if to, ok := m.targets[i]; ok {
			marks[i] = "✓"
			items[i] = fmt.Sprintf("%s → %s", c, to.Label())
			if r, ok := qcode.Lookup(m.sourceLang, to); ok {
				items[i] += fmt.Sprintf("  %s→%s", r.From, r.To)
			}
		}
	}
	s.WriteString(renderList(items, m.cursor, marks))
	s.WriteString("\n")

	if m.state == stateNewColumn {
		s.WriteString(i18n.T("New column: "))
		s.WriteString(m.input.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render(i18n.T("enter: add • esc: cancel")))
		return BoxStyle.Render(s.String())
	}

	s.WriteString(HelpStyle.Render(i18n.T("↑/↓: navigate • space: toggle • l: change language • n: new column • enter: translate • esc: back • q: quit")))
	return BoxStyle.Render(s.String())
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(i18n.T("Translating...")))
	s.WriteString("\n\n")
	s.WriteString(i18n.T("Sheet: %s", m.sheet.Name))
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())

	return BoxStyle.Render(s.String())
}

func (m Model) sheetStats(name string) (translated, failed, skipped int) {
	for _, st := range m.stats {
		if st.Sheet == name {
			translated += st.Translated
			failed += st.Failed
			skipped += st.Skipped
		}
	}
	return translated, failed, skipped
}

func (m Model) viewSheetDone() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(i18n.T("✓ Sheet translated: %s", m.sheet.Name)))
	s.WriteString("\n\n")

	translated, failed, _ := m.sheetStats(m.sheet.Name)
	s.WriteString(i18n.N("%s cell translated", "%s cells translated", translated, humanize.Comma(int64(translated))))
	s.WriteString("\n")
	if failed > 0 {
		s.WriteString(ErrorStyle.Render(i18n.N("%s cell kept its original text", "%s cells kept their original text", failed, humanize.Comma(int64(failed)))))
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(i18n.N("%d sheet left", "%d sheets left", len(m.session.Available()), len(m.session.Available())))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render(i18n.T("c: translate another sheet • s: save workbook • q: quit without saving")))

	return BoxStyle.Render(s.String())
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(i18n.T("✓ Translation Complete!")))
	s.WriteString("\n\n")

	maxPathLen := m.width - 20
	if maxPathLen < 30 {
		maxPathLen = 30
	}

	inputPath := shortenPath(m.result.InputFile, maxPathLen)
	outputPath := shortenPath(m.result.OutputFile, maxPathLen)

	translated, failed, skipped := m.result.Totals()

	s.WriteString(i18n.T("Input:  %s", inputPath))
	s.WriteString("\n")
	s.WriteString(SuccessStyle.Render(i18n.T("Output: %s", outputPath)))
	s.WriteString("\n\n")
	s.WriteString(i18n.T("Sheets translated: %s", strings.Join(m.result.Sheets, ", ")))
	s.WriteString("\n")
	s.WriteString(i18n.T("Cells translated: %s", humanize.Comma(int64(translated))))
	s.WriteString("\n")
	s.WriteString(i18n.T("Cells kept unchanged: %s", humanize.Comma(int64(failed))))
	s.WriteString("\n")
	s.WriteString(i18n.T("Empty cells: %s", humanize.Comma(int64(skipped))))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render(i18n.T("Press enter to exit")))

	return BoxStyle.Render(s.String())
}

// shortenPath keeps the tail of path within maxLen runes.
func shortenPath(path string, maxLen int) string {
	r := []rune(path)
	if len(r) <= maxLen {
		return path
	}
	return "..." + string(r[len(r)-maxLen+3:])
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render(i18n.T("✗ Error")))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render(i18n.T("Press enter to exit")))

	return BoxStyle.Render(s.String())
}
