package cmd

import (
	"context"
	"fmt"

	"github.com/parthshah1/solwizard/config"
	"github.com/parthshah1/solwizard/deployer"
	"github.com/parthshah1/solwizard/orchestrator"
	"github.com/urfave/cli/v2"
)

var RunCmd = &cli.Command{
	Name:  "run",
	Usage: "Run a scenario: compile, deploy and interact in one go (default: the SimpleStorage walkthrough)",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "scenario",
			Usage: "YAML scenario file (default: built-in SimpleStorage scenario)",
		},
	},
	Action: func(c *cli.Context) error {
		var scenario *orchestrator.Scenario
		var err error
		if path := c.String("scenario"); path != "" {
			scenario, err = orchestrator.LoadScenario(path)
		} else {
			scenario, err = orchestrator.DefaultScenario()
		}
		if err != nil {
			return err
		}

		results, err := runScenario(c.Context, scenario)
		for _, r := range results {
			logger.Debug("task result", "task", r.TaskName, "duration", r.Duration, "output", r.Output)
		}
		return err
	},
}

// newSession prepares the shared task state. The node is dialed and the
// signing key parsed only when a task first needs them, so compile tasks run
// without either.
func newSession() (*orchestrator.Session, error) {
	session := orchestrator.NewSession(cfg, nil, nil)
	session.Logger = logger
	session.NewCompiler = func(ctx context.Context) (orchestrator.Compiler, error) {
		solc, err := locateSolc(ctx, true)
		if err != nil {
			return nil, err
		}
		return solc, nil
	}
	session.NewBackend = func(ctx context.Context) (deployer.Backend, error) {
		c, err := connect(ctx)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	session.NewSigner = cfg.Sender

	workspace, err := config.NewWorkspace(cfg.Workspace)
	if err != nil {
		return nil, err
	}
	session.Workspace = workspace
	return session, nil
}

func runScenario(ctx context.Context, scenario *orchestrator.Scenario) ([]orchestrator.TaskResult, error) {
	session, err := newSession()
	if err != nil {
		return nil, err
	}
	return orchestrator.ForSession(session).Run(ctx, scenario)
}

// runTask runs a single task and returns its output.
func runTask(ctx context.Context, task orchestrator.Task) (map[string]interface{}, error) {
	results, err := runScenario(ctx, &orchestrator.Scenario{
		Name:  task.Name,
		Tasks: []orchestrator.Task{task},
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("task %s produced no result", task.Name)
	}
	return results[0].Output, nil
}
