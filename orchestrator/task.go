package orchestrator

import (
	"context"
	"time"
)

// Task types understood by the default handlers.
const (
	TaskCompile  = "compile"
	TaskDeploy   = "deploy"
	TaskCall     = "call"
	TaskTransact = "transact"
)

type Task struct {
	Name      string                 `yaml:"name"`
	Type      string                 `yaml:"type"`
	Params    map[string]interface{} `yaml:"params,omitempty"`
	DependsOn []string               `yaml:"depends_on,omitempty"`
	Timeout   time.Duration          `yaml:"timeout,omitempty"`
}

type Scenario struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Tasks       []Task            `yaml:"tasks"`
	Variables   map[string]string `yaml:"variables,omitempty"`
}

type TaskResult struct {
	TaskName string
	Output   map[string]interface{}
	Error    error
	Duration time.Duration
}

type TaskHandler interface {
	Execute(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error)
}

// HandlerFunc adapts a function to TaskHandler.
type HandlerFunc func(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error)

func (f HandlerFunc) Execute(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
	return f(ctx, params)
}
