package cmd

import (
	"fmt"

	"github.com/parthshah1/solwizard/orchestrator"
	"github.com/urfave/cli/v2"
)

var CallCmd = &cli.Command{
	Name:      "call",
	Usage:     "Call a read-only contract method",
	ArgsUsage: "<contract> <method> [args...]",
	Action: func(c *cli.Context) error {
		params, err := methodParams(c)
		if err != nil {
			return err
		}

		out, err := runTask(c.Context, orchestrator.Task{
			Name:   "call",
			Type:   orchestrator.TaskCall,
			Params: params,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Result: %s\n", out["result"])
		return nil
	},
}

var SendCmd = &cli.Command{
	Name:      "send",
	Usage:     "Send a state-changing transaction to a contract method",
	ArgsUsage: "<contract> <method> [args...]",
	Action: func(c *cli.Context) error {
		params, err := methodParams(c)
		if err != nil {
			return err
		}

		out, err := runTask(c.Context, orchestrator.Task{
			Name:   "send",
			Type:   orchestrator.TaskTransact,
			Params: params,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Transaction %s mined in block %v (gas used %v)\n", out["tx_hash"], out["block"], out["gas_used"])
		return nil
	},
}

// methodParams reads <contract> <method> [args...]. The contract is a name or
// address recorded in the workspace.
func methodParams(c *cli.Context) (map[string]interface{}, error) {
	if c.NArg() < 2 {
		return nil, fmt.Errorf("expected at least 2 arguments: <contract> <method> [args...]")
	}
	return map[string]interface{}{
		"contract": c.Args().Get(0),
		"method":   c.Args().Get(1),
		"args":     c.Args().Slice()[2:],
	}, nil
}
