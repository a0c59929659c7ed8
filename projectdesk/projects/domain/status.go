package domain

import (
	"slices"

	"github.com/pkg/errors"

	s "github.com/krew-solutions/projectdesk/projectdesk/specification/domain"
)

type TaskStatus string

const (
	Pending    TaskStatus = "Pending"
	InProgress TaskStatus = "InProgress"
	Completed  TaskStatus = "Completed"
)

var taskStatuses = []TaskStatus{Pending, InProgress, Completed}

func TaskStatuses() []string {
	names := make([]string, 0, len(taskStatuses))
	for _, status := range taskStatuses {
		names = append(names, string(status))
	}
	return names
}

// ParseTaskStatus accepts the exact status names only.
func ParseTaskStatus(name string) (TaskStatus, error) {
	status := TaskStatus(name)
	if !slices.Contains(taskStatuses, status) {
		return "", errors.Wrapf(s.ErrInvalidEnumValue, "task status \"%s\"", name)
	}
	return status, nil
}

func (st TaskStatus) IsTerminal() bool {
	return st == Completed
}
