package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/parthshah1/solwizard/deployer"
)

type Orchestrator struct {
	handlers map[string]TaskHandler
	mu       sync.RWMutex
	logger   *log.Logger
}

func New(logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		handlers: make(map[string]TaskHandler),
		logger:   logger,
	}
}

// ForSession returns an orchestrator with the session's handlers registered.
func ForSession(s *Session) *Orchestrator {
	o := New(s.Logger)
	for taskType, handler := range s.Handlers() {
		o.Register(taskType, handler)
	}
	return o
}

// Register adds or replaces the handler for a task type.
func (o *Orchestrator) Register(taskType string, handler TaskHandler) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.handlers[taskType] = handler
}

func (o *Orchestrator) Handler(taskType string) (TaskHandler, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	h, ok := o.handlers[taskType]
	return h, ok
}

// TaskTypes lists the registered task types.
func (o *Orchestrator) TaskTypes() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	types := make([]string, 0, len(o.handlers))
	for t := range o.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Run executes the scenario's tasks in order and stops at the first failure.
// The returned results include the failed task. Task outputs are exposed to
// later tasks as ${task.key} variables.
func (o *Orchestrator) Run(ctx context.Context, scenario *Scenario) ([]TaskResult, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	for _, task := range scenario.Tasks {
		if _, ok := o.Handler(task.Type); !ok {
			return nil, fmt.Errorf("task %q: unknown task type %q (known: %v)", task.Name, task.Type, o.TaskTypes())
		}
	}

	vars := make(map[string]string, len(scenario.Variables))
	for k, v := range scenario.Variables {
		vars[k] = v
	}

	o.logger.Info("running scenario", "name", scenario.Name, "tasks", len(scenario.Tasks))
	results := make([]TaskResult, 0, len(scenario.Tasks))
	for _, task := range scenario.Tasks {
		result := o.RunTask(ctx, task, vars)
		results = append(results, result)
		if result.Error != nil {
			o.logger.Error("task failed", "task", task.Name, "err", result.Error)
			return results, fmt.Errorf("task %s failed: %w", task.Name, result.Error)
		}
		for key, value := range result.Output {
			vars[task.Name+"."+key] = deployer.FormatValue(value)
		}
	}
	return results, nil
}

// RunTask executes a single task with its params expanded against vars.
func (o *Orchestrator) RunTask(ctx context.Context, task Task, vars map[string]string) TaskResult {
	result := TaskResult{TaskName: task.Name}

	handler, ok := o.Handler(task.Type)
	if !ok {
		result.Error = fmt.Errorf("unknown task type %q", task.Type)
		return result
	}
	params, err := expandParams(task.Params, vars)
	if err != nil {
		result.Error = err
		return result
	}

	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	o.logger.Debug("running task", "task", task.Name, "type", task.Type)
	start := time.Now()
	result.Output, result.Error = handler.Execute(ctx, params)
	result.Duration = time.Since(start)
	if result.Error == nil {
		o.logger.Debug("task finished", "task", task.Name, "duration", result.Duration)
	}
	return result
}
