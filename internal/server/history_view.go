package server

import "radiocode/internal/shared"

// View converts a record to its JSON form.
func (r DecodeRecord) View() shared.HistoryEntry {
	return shared.HistoryEntry{
		ID:        r.ID,
		RequestID: r.RequestID,
		Make:      r.Make,
		Field:     r.Field,
		Status:    r.Status,
		Message:   r.Message,
		CreatedAt: r.CreatedAt.Unix(),
	}
}
