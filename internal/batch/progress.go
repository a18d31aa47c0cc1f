package batch

import (
	"github.com/pterm/pterm"
)

// Progress displays per-file conversion progress.
type Progress interface {
	// Start begins tracking a file of total bytes. total is negative when unknown.
	Start(title string, total int64) ProgressTask
}

// ProgressTask tracks one file.
type ProgressTask interface {
	// Update reports the consumed input bytes.
	Update(consumed int64)
	// Success ends the task with a success message.
	Success(msg string)
	// Fail ends the task with a failure message.
	Fail(msg string)
}

// NoProgress discards all progress.
type NoProgress struct{}

func (NoProgress) Start(string, int64) ProgressTask { return noTask{} }

type noTask struct{}

func (noTask) Update(int64) {}
func (noTask) Success(string) {}
func (noTask) Fail(string) {}

// TerminalProgress draws a pterm progress bar per file.
type TerminalProgress struct{}

// Start implements Progress.
func (TerminalProgress) Start(title string, total int64) ProgressTask {
	bar, err := pterm.DefaultProgressbar.
		WithTotal(100).
		WithTitle(title).
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		return &terminalTask{total: total}
	}

	return &terminalTask{bar: bar, total: total}
}

type terminalTask struct {
	bar   *pterm.ProgressbarPrinter
	total int64
}

func (t *terminalTask) Update(consumed int64) {
	if t.bar == nil || t.total <= 0 {
		return
	}

	pct := int(min(consumed*100/t.total, 100))
	if pct > t.bar.Current {
		t.bar.Add(pct - t.bar.Current)
	}
}

func (t *terminalTask) Success(msg string) {
	t.stop()
	pterm.Success.Println(msg)
}

func (t *terminalTask) Fail(msg string) {
	t.stop()
	pterm.Error.Println(msg)
}

func (t *terminalTask) stop() {
	if t.bar != nil {
		_, _ = t.bar.Stop()
	}
}
