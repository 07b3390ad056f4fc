package orchestrator

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/parthshah1/solwizard/compiler"
	"github.com/parthshah1/solwizard/config"
	"github.com/parthshah1/solwizard/deployer"
	"github.com/parthshah1/solwizard/errs"
)

// Handlers returns the compile, deploy, call and transact handlers bound to s.
func (s *Session) Handlers() map[string]TaskHandler {
	return map[string]TaskHandler{
		TaskCompile:  HandlerFunc(s.compile),
		TaskDeploy:   HandlerFunc(s.deploy),
		TaskCall:     HandlerFunc(s.call),
		TaskTransact: HandlerFunc(s.transact),
	}
}

// compile params: source, contract, artifact ("" skips writing), print_source.
func (s *Session) compile(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
	source := stringParam(params, "source", s.Config.ContractPath)
	name := stringParam(params, "contract", s.Config.ContractName)
	artifactPath := s.Config.ArtifactPath
	if v, ok := params["artifact"]; ok {
		artifactPath = ""
		if v != nil {
			artifactPath = fmt.Sprint(v)
		}
	}

	content, err := os.ReadFile(source)
	if err != nil {
		return nil, errs.Errorf(errs.ErrCompilation, "compile", "failed to read source file %s: %w", source, err)
	}
	if boolParam(params, "print_source") {
		fmt.Fprintln(s.Out, string(content))
	}

	solc, err := s.Compiler(ctx)
	if err != nil {
		return nil, err
	}
	result, err := solc.CompileSource(ctx, filepath.Base(source), string(content), name)
	if err != nil {
		return nil, err
	}

	if artifactPath != "" {
		if err := compiler.WriteArtifact(artifactPath, result.Raw); err != nil {
			return nil, err
		}
		s.Logger.Info("wrote compiler output", "path", artifactPath)
	}

	s.AddArtifact(result.Artifact)
	return map[string]interface{}{
		"contract":      result.Artifact.Name,
		"compiler":      result.Artifact.CompilerVersion,
		"bytecode_size": len(result.Artifact.Bytecode),
		"artifact":      artifactPath,
	}, nil
}

// deploy params: contract, args.
func (s *Session) deploy(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
	name := stringParam(params, "contract", s.Config.ContractName)

	artifact, err := s.Artifact(name)
	if err != nil {
		return nil, err
	}
	args, err := convertParams(artifact.ABI.Constructor.Inputs, params)
	if err != nil {
		return nil, fmt.Errorf("constructor of %s: %w", name, err)
	}
	tr, err := s.Transactor(ctx)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(s.Out, "Deploying Contract!")
	fmt.Fprintln(s.Out, "Waiting for transaction to finish...")
	deployment, err := tr.Deploy(ctx, artifact, args...)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(s.Out, "Done! Contract deployed to %s\n", deployment.Address.Hex())

	s.addContract(name, deployer.NewContractWrapper(s.Backend, deployment.Address, artifact.ABI))

	if s.Workspace != nil {
		if err := s.record(deployment, artifact, tr); err != nil {
			s.Logger.Warn("failed to save deployment to workspace", "err", err)
		}
	}

	return map[string]interface{}{
		"address": deployment.Address.Hex(),
		"tx_hash": deployment.TxHash.Hex(),
		"nonce":   deployment.Nonce,
		"block":   deployment.Receipt.BlockNumber.Uint64(),
	}, nil
}

func (s *Session) record(deployment *deployer.Deployment, artifact *compiler.Artifact, tr *deployer.Transactor) error {
	abiPath, bytecodePath, err := s.Workspace.SaveArtifacts(artifact.Name, artifact.ABIJSON, artifact.Bytecode)
	if err != nil {
		return err
	}
	return s.Workspace.SaveDeployment(config.DeploymentRecord{
		Name:            deployment.Name,
		Address:         deployment.Address.Hex(),
		DeployerAddress: tr.From().Hex(),
		TxHash:          deployment.TxHash.Hex(),
		BlockNumber:     deployment.Receipt.BlockNumber.Uint64(),
		ChainID:         s.Config.ChainID,
		ABIPath:         abiPath,
		BytecodePath:    bytecodePath,
	})
}

// call params: contract, method, args, label (printed before the result), expect.
func (s *Session) call(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
	cw, method, args, err := s.method(ctx, params)
	if err != nil {
		return nil, err
	}

	values, err := cw.Call(ctx, method.Name, args...)
	if err != nil {
		return nil, err
	}
	result := deployer.FormatValues(values)
	if label := stringParam(params, "label", ""); label != "" {
		fmt.Fprintf(s.Out, "%s %s\n", label, result)
	}

	if expect, ok := params["expect"]; ok {
		if err := checkExpected(method, expect, values); err != nil {
			return nil, err
		}
	}

	return map[string]interface{}{
		"result": result,
	}, nil
}

// transact params: contract, method, args, label (printed before sending).
func (s *Session) transact(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
	cw, method, args, err := s.method(ctx, params)
	if err != nil {
		return nil, err
	}
	tr, err := s.Transactor(ctx)
	if err != nil {
		return nil, err
	}

	if label := stringParam(params, "label", ""); label != "" {
		fmt.Fprintln(s.Out, label)
	}
	receipt, err := cw.Transact(ctx, tr, method.Name, args...)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"tx_hash":  receipt.TxHash.Hex(),
		"block":    receipt.BlockNumber.Uint64(),
		"gas_used": receipt.GasUsed,
	}, nil
}

func (s *Session) method(ctx context.Context, params map[string]interface{}) (*deployer.ContractWrapper, abi.Method, []interface{}, error) {
	contract := stringParam(params, "contract", s.Config.ContractName)
	name := stringParam(params, "method", "")
	if name == "" {
		return nil, abi.Method{}, nil, fmt.Errorf("method is required")
	}

	cw, err := s.Contract(ctx, contract)
	if err != nil {
		return nil, abi.Method{}, nil, err
	}
	method, err := cw.Method(name)
	if err != nil {
		return nil, abi.Method{}, nil, err
	}
	args, err := convertParams(method.Inputs, params)
	if err != nil {
		return nil, abi.Method{}, nil, fmt.Errorf("%s.%s: %w", contract, name, err)
	}
	return cw, method, args, nil
}

// checkExpected compares the first output against expect, converted with the output's ABI type.
func checkExpected(method abi.Method, expect interface{}, values []interface{}) error {
	if len(method.Outputs) == 0 || len(values) == 0 {
		return fmt.Errorf("%s returns nothing to compare with %v", method.Name, expect)
	}
	want, err := deployer.ConvertArguments(method.Outputs[:1], []interface{}{expect})
	if err != nil {
		return fmt.Errorf("invalid expected value: %w", err)
	}

	wantInt, wantOK := want[0].(*big.Int)
	gotInt, gotOK := values[0].(*big.Int)
	if wantOK && gotOK {
		return config.CheckStoredValue(method.Name, wantInt, gotInt)
	}
	if deployer.FormatValue(want[0]) != deployer.FormatValue(values[0]) {
		return fmt.Errorf("%s returned %s, expected %s", method.Name, deployer.FormatValue(values[0]), deployer.FormatValue(want[0]))
	}
	return nil
}

func convertParams(inputs abi.Arguments, params map[string]interface{}) ([]interface{}, error) {
	var values []interface{}
	switch v := params["args"].(type) {
	case nil:
	case []interface{}:
		values = v
	case []string:
		values = deployer.StringArgs(v)
	default:
		values = []interface{}{v}
	}
	return deployer.ConvertArguments(inputs, values)
}

func stringParam(params map[string]interface{}, key, fallback string) string {
	if v, ok := params[key]; ok && v != nil {
		if s := fmt.Sprint(v); s != "" {
			return s
		}
	}
	return fallback
}

func boolParam(params map[string]interface{}, key string) bool {
	switch v := params[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}
