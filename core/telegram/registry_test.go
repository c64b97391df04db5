package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/anonrelay/core/telegram/commands"
)

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "start"})
	reg.RegisterCommand("/here", commands.Command{Handler: noop, Description: "chat id", Hidden: true})
	reg.RegisterCommand("nostash", commands.Command{Handler: noop, Description: "bad"})
	reg.RegisterCommand("/empty", commands.Command{Handler: noop})

	assert.Len(t, reg.Commands(), 2)
	assert.Equal(t, []tele.Command{{Text: "/start", Description: "start"}}, reg.ListCommands(true))
	assert.Len(t, reg.ListCommands(false), 2)
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCallback("reply", noop))
	require.NoError(t, reg.RegisterCallback("cancel", noop))
	assert.Error(t, reg.RegisterCallback("reply", noop))
	assert.Error(t, reg.RegisterCallback("", noop))

	_, ok := reg.GetCallback("reply")
	assert.True(t, ok)
	_, ok = reg.GetCallback("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"cancel", "reply"}, reg.ListCallbacks())
	assert.NotNil(t, reg.CallbackNotFound())
}
