package cmd

import (
	"fmt"

	"github.com/parthshah1/solwizard/orchestrator"
	"github.com/urfave/cli/v2"
)

var DeployCmd = &cli.Command{
	Name:      "deploy",
	Usage:     "Compile and deploy a contract, recording it in the workspace",
	ArgsUsage: "[constructor-args...]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "source",
			Usage: "Solidity source file (env: CONTRACT_PATH)",
		},
		&cli.StringFlag{
			Name:  "contract",
			Usage: "Contract to deploy (env: CONTRACT_NAME)",
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "Where to write the compiler output JSON (env: ARTIFACT_PATH)",
		},
		&cli.BoolFlag{
			Name:  "skip-compile",
			Usage: "Redeploy the bytecode saved in the workspace instead of compiling",
		},
	},
	Action: func(c *cli.Context) error {
		params := compileParams(c)

		var tasks []orchestrator.Task
		if !c.Bool("skip-compile") {
			tasks = append(tasks, orchestrator.Task{
				Name:   "compile",
				Type:   orchestrator.TaskCompile,
				Params: params,
			})
		}

		deployParams := map[string]interface{}{}
		if name, ok := params["contract"]; ok {
			deployParams["contract"] = name
		}
		if c.NArg() > 0 {
			deployParams["args"] = c.Args().Slice()
		}
		tasks = append(tasks, orchestrator.Task{
			Name:   "deploy",
			Type:   orchestrator.TaskDeploy,
			Params: deployParams,
		})

		results, err := runScenario(c.Context, &orchestrator.Scenario{Name: "deploy", Tasks: tasks})
		if err != nil {
			return err
		}

		out := results[len(results)-1].Output
		fmt.Printf("Transaction: %s (nonce %v, block %v)\n", out["tx_hash"], out["nonce"], out["block"])
		fmt.Printf("Saved deployment information to %s\n", cfg.Workspace)
		return nil
	},
}
