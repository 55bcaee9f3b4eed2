// Package logs holds wire types for the application log stream.
package logs

import "time"

// Entry is one line of application output, as streamed by the backend.
//
// The stream is newline-delimited JSON; each line is one Entry.
type Entry struct {
	// Cursor orders entries within an application's log. Passing the last
	// seen Cursor when reopening the stream resumes after that entry.
	Cursor string `json:"cursor"`

	TaskID string    `json:"taskId,omitempty"`
	At     time.Time `json:"at"`
	Line   string    `json:"line"`
}
