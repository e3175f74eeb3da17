package feed

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/hendrywilliam/discord-feed/src/structs"
)

var ErrColumnNotFound = errors.New("column not found")

const defaultColumnTitle = "Column"

// Column is one feed column. It shows every message when ChannelIDs is
// empty, otherwise only messages from the listed channels.
type Column struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	ChannelIDs []string  `json:"channel_ids"`
}

func (f *Feed) AddColumn(title string, channelIDs []string) Column {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultColumnTitle
	}
	c := Column{
		ID:         uuid.New(),
		Title:      title,
		ChannelIDs: dedupe(channelIDs),
	}
	f.colMu.Lock()
	f.columns = append(f.columns, c)
	f.colMu.Unlock()
	return c
}

func (f *Feed) Columns() []Column {
	f.colMu.RLock()
	defer f.colMu.RUnlock()
	out := make([]Column, len(f.columns))
	copy(out, f.columns)
	return out
}

func (f *Feed) Column(id uuid.UUID) (Column, error) {
	f.colMu.RLock()
	defer f.colMu.RUnlock()
	for _, c := range f.columns {
		if c.ID == id {
			return c, nil
		}
	}
	return Column{}, ErrColumnNotFound
}

func (f *Feed) RemoveColumn(id uuid.UUID) error {
	f.colMu.Lock()
	defer f.colMu.Unlock()
	for i, c := range f.columns {
		if c.ID == id {
			f.columns = append(f.columns[:i], f.columns[i+1:]...)
			return nil
		}
	}
	return ErrColumnNotFound
}

func (f *Feed) ColumnMessages(id uuid.UUID) ([]structs.Message, error) {
	c, err := f.Column(id)
	if err != nil {
		return nil, err
	}
	return f.FilterMessages(c.ChannelIDs), nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
