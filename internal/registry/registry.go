// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/taskdeck/taskdeck/pkg/taskfile"
)

// maxSuggestionDistance is the largest edit distance offered as a "did you
// mean" candidate.
const maxSuggestionDistance = 2

var (
	// ErrTaskNotFound is the sentinel wrapped by TaskNotFoundError.
	ErrTaskNotFound = errors.New("task not found")
	// ErrDuplicateTask is returned by Register for a name already present.
	ErrDuplicateTask = errors.New("task already registered")
)

type (
	// Registry maps task names to descriptors.
	Registry struct {
		tasks map[taskfile.TaskName]taskfile.Task
	}

	// TaskNotFoundError is returned by Lookup for an unknown name.
	TaskNotFoundError struct {
		Name        string
		Suggestions []string
	}
)

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task %q not found", e.Name)
}

func (e *TaskNotFoundError) Unwrap() error { return ErrTaskNotFound }

// New creates an empty registry.
func New() *Registry {
	return &Registry{tasks: make(map[taskfile.TaskName]taskfile.Task)}
}

// Default returns a registry holding the built-in tasks.
func Default() *Registry {
	r := New()
	for _, t := range taskfile.Defaults() {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}

// FromTaskfile layers the tasks of tf over the built-ins. Taskfile entries
// replace built-ins of the same name.
func FromTaskfile(tf *taskfile.Taskfile) (*Registry, error) {
	r := Default()
	if tf == nil {
		return r, nil
	}
	tasks, err := tf.Tasks()
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		r.Override(t)
	}
	return r, nil
}

// Register adds t. It fails if the name is already taken.
func (r *Registry) Register(t taskfile.Task) error {
	if t.IsZero() {
		return fmt.Errorf("register: zero task")
	}
	if _, exists := r.tasks[t.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, t.Name())
	}
	r.tasks[t.Name()] = t
	return nil
}

// Override adds t, replacing any task with the same name.
func (r *Registry) Override(t taskfile.Task) {
	r.tasks[t.Name()] = t
}

// Lookup returns the task registered under name.
func (r *Registry) Lookup(name string) (taskfile.Task, error) {
	if t, ok := r.tasks[taskfile.TaskName(name)]; ok {
		return t, nil
	}
	return taskfile.Task{}, &TaskNotFoundError{Name: name, Suggestions: r.suggest(name)}
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int { return len(r.tasks) }

// Names returns all task names, sorted.
func (r *Registry) Names() []string {
	names := lo.Map(lo.Keys(r.tasks), func(n taskfile.TaskName, _ int) string { return string(n) })
	sort.Strings(names)
	return names
}

// Tasks returns all tasks sorted by name.
func (r *Registry) Tasks() []taskfile.Task {
	return lo.Map(r.Names(), func(n string, _ int) taskfile.Task {
		return r.tasks[taskfile.TaskName(n)]
	})
}

// suggest returns registered names that share a prefix with name or are
// within maxSuggestionDistance edits of it.
func (r *Registry) suggest(name string) []string {
	if name == "" {
		return nil
	}
	lower := strings.ToLower(name)
	return lo.Filter(r.Names(), func(candidate string, _ int) bool {
		c := strings.ToLower(candidate)
		return strings.HasPrefix(c, lower) || strings.HasPrefix(lower, c) ||
			levenshtein(c, lower) <= maxSuggestionDistance
	})
}

func levenshtein(a, b string) int {
	ar, br := []rune(a), []rune(b)
	prev := make([]int, len(br)+1)
	cur := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		cur[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(br)]
}
