package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/vidsheet/internal/sheet"
)

// Job is one file's unit of work. It is created by Run for every file that
// needs a sheet and discarded once its result has been logged.
type Job struct {
	ID     uuid.UUID
	Input  string
	Output string
	Index  int // 1-based position in the batch, for "[i/n]" lines.
	Total  int

	Status  sheet.Status
	Err     error
	Result  *sheet.Result
	Elapsed time.Duration
}

func newJob(input, output string, index, total int) *Job {
	return &Job{
		ID:     uuid.New(),
		Input:  input,
		Output: output,
		Index:  index,
		Total:  total,
		Status: sheet.StatusPending,
	}
}

// Request returns the sheet request for this job.
func (j *Job) Request() sheet.Request {
	return sheet.Request{ID: j.ID, Input: j.Input, Output: j.Output}
}
