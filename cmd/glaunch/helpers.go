package main

import (
	"fmt"
	"os"

	"glaunch/internal/core"
	"glaunch/internal/event"
	"glaunch/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

// watchProgress runs fn while rendering the service's progress events,
// either through the interactive bubbletea view or as plain text lines
// (--plain / --json). fn's error is always the command's result; rendering
// failures are ignored.
func watchProgress(svc *core.Service, fn func() error) error {
	events, cancel := svc.Bus().Subscribe(256)

	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
		// Ends the subscription; both renderers exit on channel close.
		cancel()
	}()

	if plain || jsonOutput {
		renderPlain(events)
	} else {
		p := tea.NewProgram(tui.NewProgressModel(events))
		if _, err := p.Run(); err != nil {
			// Keep draining so fn is never blocked on the bus.
			renderPlain(events)
		}
	}

	return <-errCh
}

// renderPlain prints progress as log lines: stage changes, messages, and
// 10% download increments rather than every chunk.
func renderPlain(events <-chan event.Event) {
	lastStage := ""
	lastDecile := -1

	for ev := range events {
		if ev.Error != nil {
			fmt.Fprintf(os.Stderr, "error (%s): %s\n", ev.Error.Kind, ev.Error.Message)
			continue
		}
		p := ev.Progress
		if p == nil {
			continue
		}

		if p.Stage != lastStage {
			lastStage = p.Stage
			lastDecile = -1
			if p.Message != "" {
				fmt.Printf("%s: %s\n", p.Stage, p.Message)
			} else {
				fmt.Printf("%s\n", p.Stage)
			}
			continue
		}

		if p.Progress >= 0 {
			decile := int(p.Progress * 10)
			if decile > lastDecile {
				lastDecile = decile
				if p.Total > 0 {
					fmt.Printf("  %3.0f%%  %s\n", p.Progress*100, p.Speed)
				} else {
					fmt.Printf("  %3.0f%%\n", p.Progress*100)
				}
			}
		}
	}
}
