package output

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/huh/spinner"
)

// SpinnerOption configures a spinner.
type SpinnerOption func(*spinnerConfig)

type spinnerConfig struct {
	title   string
	timeout time.Duration
}

// WithTitle sets the spinner title.
func WithTitle(title string) SpinnerOption {
	return func(c *spinnerConfig) {
		c.title = title
	}
}

// WithTimeout sets the spinner timeout.
func WithTimeout(timeout time.Duration) SpinnerOption {
	return func(c *spinnerConfig) {
		c.timeout = timeout
	}
}

// RunWithSpinner executes action while a spinner is shown on a terminal.
// Without a terminal the action simply runs inline.
func RunWithSpinner(ctx context.Context, action func(ctx context.Context) error, opts ...SpinnerOption) error {
	cfg := &spinnerConfig{title: "Working..."}
	for _, opt := range opts {
		opt(cfg)
	}

	actionCtx := ctx
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		actionCtx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	if !IsTTY() {
		return action(actionCtx)
	}

	var actionErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		actionErr = action(actionCtx)
	}()

	spinnerErr := spinner.New().Title(cfg.title).Action(func() {
		<-done
	}).Run()
	<-done

	if actionErr != nil {
		return actionErr
	}
	if spinnerErr != nil {
		return fmt.Errorf("spinner error: %w", spinnerErr)
	}
	return nil
}
