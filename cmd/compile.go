package cmd

import (
	"fmt"

	"github.com/parthshah1/solwizard/orchestrator"
	"github.com/urfave/cli/v2"
)

var CompileCmd = &cli.Command{
	Name:  "compile",
	Usage: "Compile a Solidity contract and write the compiler output",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "source",
			Usage: "Solidity source file (env: CONTRACT_PATH)",
		},
		&cli.StringFlag{
			Name:  "contract",
			Usage: "Contract to extract from the compiler output (env: CONTRACT_NAME)",
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "Where to write the compiler output JSON (env: ARTIFACT_PATH)",
		},
		&cli.BoolFlag{
			Name:  "print-source",
			Usage: "Print the contract source before compiling",
		},
	},
	Action: func(c *cli.Context) error {
		params := compileParams(c)
		if c.Bool("print-source") {
			params["print_source"] = true
		}

		out, err := runTask(c.Context, orchestrator.Task{
			Name:   "compile",
			Type:   orchestrator.TaskCompile,
			Params: params,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Compiled %s with solc %s (%d bytes of bytecode)\n", out["contract"], out["compiler"], out["bytecode_size"])
		if path := out["artifact"]; path != "" {
			fmt.Printf("Saved compiler output to %s\n", path)
		}
		return nil
	},
}

func compileParams(c *cli.Context) map[string]interface{} {
	params := map[string]interface{}{}
	if c.IsSet("source") {
		params["source"] = c.String("source")
	}
	if c.IsSet("contract") {
		params["contract"] = c.String("contract")
	}
	if c.IsSet("output") {
		params["artifact"] = c.String("output")
	}
	return params
}
