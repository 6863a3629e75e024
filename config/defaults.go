package config

// network type constants
const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
	NetworkMastery = "mastery" // AION testnet
	NetworkRopsten = "ropsten"
	NetworkPokket  = "pokket"
)

// explorer providers understood by the adapters
const (
	ProviderEtherscan     = "etherscan"
	ProviderEthplorer     = "ethplorer"
	ProviderAionDashboard = "aion-dashboard"
	ProviderBlockchain    = "blockchain.info"
)

func network(jsonrpc, apiProvider, apiURL, provider, url string) Object {
	return Object{
		"jsonrpc": Leaf{Value: jsonrpc},
		"explorer_api": Object{
			"provider": Leaf{Value: apiProvider},
			"url":      Leaf{Value: apiURL},
		},
		"explorer": Object{
			"provider": Leaf{Value: provider},
			"url":      Leaf{Value: url},
		},
	}
}

func servers(static, api string) Object {
	return Object{
		"static": Leaf{Value: static},
		"api":    Leaf{Value: api},
	}
}

// AionDefaults returns the default AION endpoints.
func AionDefaults() Object {
	return Object{
		"networks": Object{
			NetworkMainnet: network(
				"https://aion.api.nodesmith.io/v1/mainnet/jsonrpc",
				ProviderAionDashboard, "https://mainnet-api.aion.network",
				"aion", "https://mainnet.aion.network/#/transaction",
			),
			NetworkMastery: network(
				"https://aion.api.nodesmith.io/v1/mastery/jsonrpc",
				ProviderAionDashboard, "https://mastery-api.aion.network",
				"aion", "https://mastery.aion.network/#/transaction",
			),
		},
	}
}

// EthereumDefaults returns the default Ethereum endpoints and explorer API keys.
func EthereumDefaults() Object {
	return Object{
		"networks": Object{
			NetworkMainnet: network(
				"https://mainnet.infura.io/v3/64279947c29a4a8b9daf61f4c6c426b5",
				ProviderEthplorer, "http://api.ethplorer.io",
				"etherchain", "https://www.etherchain.org/tx",
			),
			NetworkRopsten: network(
				"https://ropsten.infura.io/v3/64279947c29a4a8b9daf61f4c6c426b5",
				ProviderEtherscan, "https://api-ropsten.etherscan.io/api",
				ProviderEtherscan, "https://api-ropsten.etherscan.io/tx",
			),
			NetworkPokket: network(
				"http://45.118.132.89:8080/pokketchain",
				ProviderEtherscan, "https://api-ropsten.etherscan.io/api",
				ProviderEtherscan, "https://api-ropsten.etherscan.io/tx",
			),
		},
		"etherscanApikey": Leaf{Value: "W97WSD5JD814S3EJCJXHW7H8Y3TM3D2UK2"},
		"ethplorerApiKey": Leaf{Value: "freekey"},
	}
}

// BitcoinDefaults returns the default Bitcoin endpoints. Bitcoin has no JSON-RPC node, every
// call goes to the explorer API.
func BitcoinDefaults() Object {
	return Object{
		"networks": Object{
			NetworkMainnet: network(
				"",
				ProviderBlockchain, "https://blockchain.info",
				"blockchain.com", "https://www.blockchain.com/btc/tx",
			),
			NetworkTestnet: network(
				"",
				ProviderBlockchain, "https://testnet.blockchain.info",
				"blockchain.com", "https://www.blockchain.com/btc-testnet/tx",
			),
		},
	}
}

// RemoteDefaults returns the first-party backend environments.
func RemoteDefaults() Object {
	return Object{
		"qa":      servers("http://45.118.132.89", "http://45.118.132.89:8080"),
		"staging": servers("http://45.118.132.89", "http://45.118.132.89:8080"),
		"prod":    servers("https://www.chaion.net", "https://www.chaion.net/makkii"),
	}
}

// Defaults returns the complete default configuration tree.
func Defaults() Object {
	return Object{
		"aion":   AionDefaults(),
		"eth":    EthereumDefaults(),
		"btc":    BitcoinDefaults(),
		"remote": RemoteDefaults(),
	}
}
