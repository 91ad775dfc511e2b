package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookchat/internal/chat"
)

type fakeConv struct {
	got    []string
	resets int
	reply  chat.Reply
}

func (f *fakeConv) Handle(_ context.Context, msg string) chat.Reply {
	f.got = append(f.got, msg)
	return f.reply
}

func (f *fakeConv) Reset() string {
	f.resets++
	return chat.Greeting
}

func typeText(m tea.Model, s string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func TestModel_EnterSendsTurn(t *testing.T) {
	conv := &fakeConv{reply: chat.Reply{
		Text: "Here are the top books:\n3: Dune by frank herbert\nPick a number or type 'none' to see more.",
		To:   chat.StepSelectBook,
	}}
	var m tea.Model = New(conv)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m = typeText(m, " sci-fi ")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, []string{"sci-fi"}, conv.got)
	model := m.(Model)
	require.Len(t, model.transcript, 3)
	assert.Equal(t, "step: select_book", model.status)
	assert.False(t, model.failed)
	assert.Empty(t, model.input.Value())
	assert.Contains(t, model.View(), "Dune")
}

func TestModel_EmptyEnterIsIgnored(t *testing.T) {
	conv := &fakeConv{}
	var m tea.Model = New(conv)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, conv.got)
}

func TestModel_ErrorStatus(t *testing.T) {
	conv := &fakeConv{reply: chat.Reply{Text: "Sorry", Err: chat.ErrEmptyResult, To: chat.StepFilterAuthor}}
	var m tea.Model = New(conv)
	m = typeText(m, "rowling")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	model := m.(Model)
	assert.True(t, model.failed)
	assert.Equal(t, "step: filter_author  (no match)", model.status)
}

func TestModel_ResetAndQuit(t *testing.T) {
	conv := &fakeConv{reply: chat.Reply{Text: "ok", To: chat.StepFilterGenre}}
	var m tea.Model = New(conv)
	m = typeText(m, "genre")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, 1, conv.resets)
	model := m.(Model)
	require.Len(t, model.transcript, 1)
	assert.Equal(t, chat.Greeting, model.transcript[0].text)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestIsBookLine(t *testing.T) {
	assert.True(t, isBookLine("12: Dune by frank herbert"))
	assert.True(t, isBookLine("- Dune by frank herbert"))
	assert.False(t, isBookLine("You selected: Dune"))
	assert.False(t, isBookLine(": nothing"))
}
