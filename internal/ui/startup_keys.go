package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// maxSettleSteps bounds the messages one settle call delivers.
const maxSettleSteps = 1000

// settle runs cmd and every command it produces synchronously, feeding the
// messages back into the model. Quit is ignored.
func (m *Model) settle(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < maxSettleSteps; steps++ {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, c := m.Update(msg)
			queue = append(queue, c)
		}
	}
}

// ApplyStartupKeys simulates key presses. Tokens use Vim notation for
// special keys ("<Down>", "<CR>", "<Space>", "<C-c>") and are otherwise
// typed as literal text; a leading backslash forces the whole token to be
// literal. Each key is settled before the next is sent.
func ApplyStartupKeys(m *Model, keys []string) {
	if m == nil {
		return
	}
	for _, raw := range keys {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if strings.HasPrefix(token, `\`) {
			m.typeText(strings.TrimPrefix(token, `\`))
			continue
		}
		for _, seg := range parseTokenSegments(token) {
			if !seg.isVimKey {
				m.typeText(seg.text)
				continue
			}
			if msg, ok := keyMsgFromToken(seg.text); ok {
				m.press(msg)
			}
		}
	}
}

func (m *Model) typeText(text string) {
	for _, r := range text {
		m.press(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func (m *Model) press(msg tea.KeyPressMsg) {
	_, cmd := m.Update(msg)
	m.settle(cmd)
}

// tokenSegment is either a <...> key or a run of literal text.
type tokenSegment struct {
	text     string
	isVimKey bool
}

// parseTokenSegments splits "<Down>12<CR>" into "<Down>", "12" and "<CR>".
// An unterminated "<" is literal.
func parseTokenSegments(token string) []tokenSegment {
	var segments []tokenSegment
	for remaining := token; remaining != ""; {
		open := strings.Index(remaining, "<")
		if open == -1 {
			segments = append(segments, tokenSegment{text: remaining})
			break
		}
		if open > 0 {
			segments = append(segments, tokenSegment{text: remaining[:open]})
		}
		end := strings.Index(remaining[open:], ">")
		if end == -1 {
			segments = append(segments, tokenSegment{text: remaining[open:]})
			break
		}
		segments = append(segments, tokenSegment{text: remaining[open : open+end+1], isVimKey: true})
		remaining = remaining[open+end+1:]
	}
	return segments
}

var namedKeys = map[string]tea.KeyPressMsg{
	"esc":       {Code: tea.KeyEscape},
	"escape":    {Code: tea.KeyEscape},
	"c-[":       {Code: tea.KeyEscape},
	"cr":        {Code: tea.KeyEnter},
	"enter":     {Code: tea.KeyEnter},
	"return":    {Code: tea.KeyEnter},
	"tab":       {Code: tea.KeyTab},
	"space":     {Code: tea.KeySpace, Text: " "},
	"bs":        {Code: tea.KeyBackspace},
	"backspace": {Code: tea.KeyBackspace},
	"up":        {Code: tea.KeyUp},
	"down":      {Code: tea.KeyDown},
	"left":      {Code: tea.KeyLeft},
	"right":     {Code: tea.KeyRight},
	"pageup":    {Code: tea.KeyPgUp},
	"pgup":      {Code: tea.KeyPgUp},
	"pagedown":  {Code: tea.KeyPgDown},
	"pgdn":      {Code: tea.KeyPgDown},
	"home":      {Code: tea.KeyHome},
	"end":       {Code: tea.KeyEnd},
	"c-c":       {Code: 'c', Mod: tea.ModCtrl},
}

// keyMsgFromToken parses a <...> token. Names are case-insensitive.
func keyMsgFromToken(token string) (tea.KeyPressMsg, bool) {
	if !strings.HasPrefix(token, "<") || !strings.HasSuffix(token, ">") {
		return tea.KeyPressMsg{}, false
	}
	name := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(token, "<"), ">"))
	msg, ok := namedKeys[name]
	return msg, ok
}
