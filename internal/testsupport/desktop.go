package testsupport

import (
	"context"
	"sync"
)

// FakeClipboard is an in-memory desktop.Clipboard.
type FakeClipboard struct {
	mu sync.Mutex

	Text     string
	FileList []string
	Writes   []string

	ReadErr  error
	WriteErr error
	FilesErr error
}

func (c *FakeClipboard) ReadText() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ReadErr != nil {
		return "", c.ReadErr
	}
	return c.Text, nil
}

func (c *FakeClipboard) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WriteErr != nil {
		return c.WriteErr
	}
	c.Text = text
	c.Writes = append(c.Writes, text)
	return nil
}

func (c *FakeClipboard) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Text = ""
	return nil
}

func (c *FakeClipboard) Files(context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FilesErr != nil {
		return nil, c.FilesErr
	}
	return append([]string(nil), c.FileList...), nil
}

// SetText replaces the clipboard text without recording a write.
func (c *FakeClipboard) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Text = text
}

// FakeWindow is an in-memory desktop.Window that records calls.
type FakeWindow struct {
	mu sync.Mutex

	ActiveID  string
	Activated []string
	Keys      []string

	ActiveErr   error
	ActivateErr error
	KeysErr     error

	// OnKeys runs after a key combination is recorded, e.g. to simulate a copy.
	OnKeys func(combo string)
}

func (w *FakeWindow) Active(context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ActiveErr != nil {
		return "", w.ActiveErr
	}
	return w.ActiveID, nil
}

func (w *FakeWindow) Activate(_ context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ActivateErr != nil {
		return w.ActivateErr
	}
	w.Activated = append(w.Activated, id)
	return nil
}

func (w *FakeWindow) SendKeys(_ context.Context, combo string) error {
	w.mu.Lock()
	if w.KeysErr != nil {
		w.mu.Unlock()
		return w.KeysErr
	}
	w.Keys = append(w.Keys, combo)
	hook := w.OnKeys
	w.mu.Unlock()
	if hook != nil {
		hook(combo)
	}
	return nil
}
