package matching

import "github.com/alexmejias/repo-radar/internal/models"

// builderNiches is the static catalog of builder profiles. Immutable seed
// data; Niches returns copies so callers cannot mutate it.
var builderNiches = []models.BuilderNiche{
	{
		ID:                "defi",
		Name:              "DeFi Builder",
		Description:       "Lending, DEXes, derivatives and on-chain asset management",
		Icon:              "bank",
		Tags:              []string{"DeFi", "Lending", "DEX", "Stablecoins", "Derivatives"},
		RecommendedChains: []string{"ethereum", "arbitrum", "base"},
	},
	{
		ID:                "infrastructure",
		Name:              "Infrastructure Builder",
		Description:       "Node tooling, indexing, RPC and developer platforms",
		Icon:              "server",
		Tags:              []string{"Infrastructure", "Developer Tools", "Indexing", "RPC", "SDK"},
		RecommendedChains: []string{"ethereum", "solana", "cosmos"},
	},
	{
		ID:                "gaming",
		Name:              "Gaming Builder",
		Description:       "On-chain games, game engines and gaming economies",
		Icon:              "gamepad",
		Tags:              []string{"Gaming", "NFT", "Metaverse"},
		RecommendedChains: []string{"polygon", "solana", "avalanche"},
	},
	{
		ID:                "privacy",
		Name:              "Privacy Builder",
		Description:       "Zero-knowledge applications and private computation",
		Icon:              "shield",
		Tags:              []string{"Privacy", "ZK", "Zero-Knowledge", "Cryptography"},
		RecommendedChains: []string{"ethereum", "zksync", "starknet"},
	},
	{
		ID:                "public-goods",
		Name:              "Public Goods Builder",
		Description:       "Open-source tooling, education and ecosystem commons",
		Icon:              "heart",
		Tags:              []string{"Public Goods", "Open Source", "Education", "Community"},
		RecommendedChains: []string{"ethereum", "optimism"},
	},
	{
		ID:                "data",
		Name:              "Data & Analytics Builder",
		Description:       "On-chain data pipelines, oracles and analytics products",
		Icon:              "chart",
		Tags:              []string{"Data", "Analytics", "Oracles", "Indexing"},
		RecommendedChains: []string{"ethereum", "near", "polkadot"},
	},
}

// Niches returns the full builder-niche catalog.
func Niches() []models.BuilderNiche {
	out := make([]models.BuilderNiche, len(builderNiches))
	copy(out, builderNiches)
	return out
}

// NicheByID resolves a niche id against the static catalog.
func NicheByID(id string) (models.BuilderNiche, bool) {
	for _, n := range builderNiches {
		if n.ID == id {
			return n, true
		}
	}
	return models.BuilderNiche{}, false
}
