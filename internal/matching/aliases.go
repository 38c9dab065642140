package matching

import "strings"

// EcosystemMultiChain marks programs that fund work on any chain.
const EcosystemMultiChain = "multi-chain"

// ecosystemAliasTable maps a chain identifier to the canonical ecosystem
// identifiers it should be treated as equivalent to during matching. L2s map
// to their settlement ecosystem plus multi-chain.
var ecosystemAliasTable = map[string][]string{
	"ethereum":  {"ethereum", EcosystemMultiChain},
	"arbitrum":  {"arbitrum", "ethereum", EcosystemMultiChain},
	"optimism":  {"optimism", "ethereum", EcosystemMultiChain},
	"base":      {"base", "ethereum", EcosystemMultiChain},
	"polygon":   {"polygon", "ethereum", EcosystemMultiChain},
	"solana":    {"solana", EcosystemMultiChain},
	"polkadot":  {"polkadot", EcosystemMultiChain},
	"cosmos":    {"cosmos", EcosystemMultiChain},
	"near":      {"near", EcosystemMultiChain},
	"avalanche": {"avalanche", EcosystemMultiChain},
	"bnb":       {"bnb", EcosystemMultiChain},
	"celo":      {"celo", "ethereum", EcosystemMultiChain},
	"scroll":    {"scroll", "ethereum", EcosystemMultiChain},
	"zksync":    {"zksync", "ethereum", EcosystemMultiChain},
	"starknet":  {"starknet", "ethereum", EcosystemMultiChain},
}

// EcosystemAliases returns the alias set for a chain identifier. Unknown
// chains alias to themselves plus multi-chain, so new chains degrade to
// exact-match behavior instead of matching nothing.
func EcosystemAliases(chain string) []string {
	chain = strings.ToLower(strings.TrimSpace(chain))
	if chain == "" {
		return nil
	}
	if aliases, ok := ecosystemAliasTable[chain]; ok {
		return aliases
	}
	return []string{chain, EcosystemMultiChain}
}
