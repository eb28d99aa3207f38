// SPDX-License-Identifier: MIT
package tui

import (
	"errors"
	"testing"

	"waveglow/internal/audio"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDevices = []audio.Device{
	{ID: 0, Name: "Speakers", MaxOutputChannels: 2, DefaultSampleRate: 48000},
	{ID: 1, Name: "Built-in Mic", MaxInputChannels: 1, DefaultSampleRate: 48000},
	{ID: 2, Name: "Interface", MaxInputChannels: 2, MaxOutputChannels: 2, DefaultSampleRate: 96000},
}

func send(t *testing.T, m DeviceListModel, msg tea.Msg) (DeviceListModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(DeviceListModel)
	require.True(t, ok)
	return out, cmd
}

func keyPress(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func loadedModel(t *testing.T) DeviceListModel {
	t.Helper()
	m := NewDeviceListModel(func() ([]audio.Device, error) { return testDevices, nil })
	msg := m.Init()()
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = send(t, m, msg)
	return m
}

func TestInitFiltersOutputOnlyDevices(t *testing.T) {
	m := loadedModel(t)
	require.Len(t, m.devices, 2)
	assert.Equal(t, "Built-in Mic", m.devices[0].Name)
	assert.Equal(t, "Interface", m.devices[1].Name)
	assert.Contains(t, m.View(), "Capture Device")
}

func TestPickDeviceAndRate(t *testing.T) {
	m := loadedModel(t)

	m, _ = send(t, m, keyPress(tea.KeyDown))
	m, _ = send(t, m, keyPress(tea.KeyDown)) // stays on the last device
	assert.Equal(t, 1, m.selectedIndex)

	m, _ = send(t, m, keyPress(tea.KeyEnter))
	assert.Equal(t, ConfigScreen, m.activeScreen)
	assert.Equal(t, 3, m.sampleRateIndex, "starts at the device default")
	assert.Contains(t, m.View(), "Configure Device: Interface")

	m, _ = send(t, m, keyPress(tea.KeyUp))
	m, cmd := send(t, m, keyPress(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	sel, ok := m.Selection()
	require.True(t, ok)
	assert.Equal(t, Selection{DeviceID: 2, DeviceName: "Interface", SampleRate: 88200}, sel)
}

func TestBackReturnsToList(t *testing.T) {
	m := loadedModel(t)
	m, _ = send(t, m, keyPress(tea.KeyEnter))
	m, _ = send(t, m, keyPress(tea.KeyEsc))
	assert.Equal(t, ListScreen, m.activeScreen)

	_, ok := m.Selection()
	assert.False(t, ok)
}

func TestQuitWithoutSelection(t *testing.T) {
	m := loadedModel(t)
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	_, ok := m.Selection()
	assert.False(t, ok)
}

func TestFetchError(t *testing.T) {
	m := NewDeviceListModel(func() ([]audio.Device, error) { return nil, errors.New("no host") })
	m, _ = send(t, m, m.Init()())
	assert.Contains(t, m.View(), "Error: no host")
}

func TestEmptyDeviceList(t *testing.T) {
	m := NewDeviceListModel(func() ([]audio.Device, error) { return nil, nil })
	msg := m.Init()()
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = send(t, m, msg)
	m, _ = send(t, m, keyPress(tea.KeyEnter))
	assert.Equal(t, ListScreen, m.activeScreen)
	assert.Contains(t, m.View(), "No input devices found.")
}
