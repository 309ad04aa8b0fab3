package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"punctab/internal/driver"
	"punctab/internal/ui"
)

type generateOutcome struct {
	results []*driver.Result
	err     error
}

// runGenerateWithUI runs driver.GenerateAll while a progress view consumes its phase events.
func runGenerateWithUI(ctx context.Context, out io.Writer, title string, jobs []driver.Job, opts driver.Options) ([]*driver.Result, error) {
	events := make(chan driver.PhaseEvent, 256)
	outcomeCh := make(chan generateOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Observer = func(ev driver.PhaseEvent) {
			if ev.Status != driver.PhaseEnd {
				events <- ev
			}
		}
		res, err := driver.GenerateAll(ctx, jobs, optsCopy)
		outcomeCh <- generateOutcome{results: res, err: err}
		close(events)
	}()

	names := make([]string, len(jobs))
	for i, job := range jobs {
		names[i] = job.Name
	}
	model := ui.NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil))
	_, uiErr := program.Run()
	// если UI упал раньше времени, генерация не должна блокироваться на канале
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
