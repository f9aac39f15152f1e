package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"shadec/internal/driver"
	"shadec/internal/ui"
)

type runOutcome struct {
	results []*driver.Result
	err     error
}

func runWithUI(ctx context.Context, title string, files []string, run func(driver.ProgressSink) ([]*driver.Result, error)) ([]*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		res, err := run(driver.ChannelSink{Ch: events})
		outcomeCh <- runOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// UI мог выйти раньше (ctrl+c): дочитываем события, чтобы воркеры не встали
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
