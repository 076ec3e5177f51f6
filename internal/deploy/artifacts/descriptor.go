package artifacts

import (
	"errors"
	"fmt"
	"strings"
)

// Descriptor identifies a compiled contract by source unit and contract name,
// e.g. contracts/Fhenix.sol:BlackJack. SourceName may be empty when the
// contract name alone is unique among the compiled artifacts.
type Descriptor struct {
	SourceName   string
	ContractName string
}

// ParseDescriptor parses "<source-unit>:<Contract>" or a bare "<Contract>".
func ParseDescriptor(value string) (Descriptor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Descriptor{}, errors.New("contract descriptor is empty")
	}

	source, name, found := strings.Cut(value, ":")
	if !found {
		name, source = source, ""
	}

	source = strings.TrimSpace(source)
	name = strings.TrimSpace(name)

	if name == "" {
		return Descriptor{}, fmt.Errorf("contract descriptor '%s' has no contract name", value)
	}
	if found && source == "" {
		return Descriptor{}, fmt.Errorf("contract descriptor '%s' has no source unit", value)
	}
	if strings.ContainsAny(name, `/\:`) {
		return Descriptor{}, fmt.Errorf("invalid contract name '%s'", name)
	}

	return Descriptor{SourceName: source, ContractName: name}, nil
}

func (d Descriptor) String() string {
	if d.SourceName == "" {
		return d.ContractName
	}
	return d.SourceName + ":" + d.ContractName
}

// Matches reports whether an artifact compiled from sourceName satisfies d.
// A source unit without a directory matches by base name, so Fhenix.sol
// matches contracts/Fhenix.sol.
func (d Descriptor) Matches(sourceName, contractName string) bool {
	if d.ContractName != contractName {
		return false
	}
	if d.SourceName == "" || d.SourceName == sourceName {
		return true
	}
	if strings.Contains(d.SourceName, "/") {
		return false
	}
	return strings.HasSuffix(sourceName, "/"+d.SourceName)
}
