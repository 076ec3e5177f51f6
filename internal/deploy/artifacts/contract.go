package artifacts

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	artifactFormat = "hh-sol-artifact-1"
	debugFormat    = "hh-sol-dbg-1"

	buildInfoDirName = "build-info"
	debugFileSuffix  = ".dbg.json"
)

type (
	// Artifact is a compiled contract ready to be deployed.
	Artifact struct {
		Descriptor      Descriptor
		ABI             abi.ABI
		RawABI          string
		Bytecode        []byte
		CompilerVersion string
		Path            string
	}

	// hardhatArtifact is the on-disk layout of <source>/<Contract>.json.
	hardhatArtifact struct {
		Format       string          `json:"_format"`
		ContractName string          `json:"contractName"`
		SourceName   string          `json:"sourceName"`
		ABI          json.RawMessage `json:"abi"`
		Bytecode     string          `json:"bytecode"`
	}

	hardhatDebug struct {
		Format    string `json:"_format"`
		BuildInfo string `json:"buildInfo"`
	}

	hardhatBuildInfo struct {
		SolcVersion string `json:"solcVersion"`
	}
)

// ConstructorInputs returns the number of arguments the constructor takes.
func (a Artifact) ConstructorInputs() int {
	return len(a.ABI.Constructor.Inputs)
}
