package keys

// ChainParams holds the version bytes used when encoding addresses and keys.
type ChainParams struct {
	p2pkh_address_prefix byte
	pkey_prefix          byte
}

var MainChain ChainParams = ChainParams{
	p2pkh_address_prefix: 0x1e, // D
	pkey_prefix:          0x9e, // Q or 6
}

var TestChain ChainParams = ChainParams{
	p2pkh_address_prefix: 0x71, // n
	pkey_prefix:          0xf1, // 9 or c
}

var BitcoinMainChain ChainParams = ChainParams{
	p2pkh_address_prefix: 0x00, // 1
	pkey_prefix:          0x80, // 5H,5J,5K
}

func ChainFromTestNetFlag(is_testnet bool) *ChainParams {
	if is_testnet {
		return &TestChain
	}
	return &MainChain
}

func ChainFromAddressPrefix(prefix byte) (*ChainParams, bool) {
	switch prefix {
	case MainChain.p2pkh_address_prefix:
		return &MainChain, true
	case TestChain.p2pkh_address_prefix:
		return &TestChain, true
	case BitcoinMainChain.p2pkh_address_prefix:
		return &BitcoinMainChain, true
	}
	return nil, false
}

func ChainFromWIFPrefix(prefix byte) (*ChainParams, bool) {
	switch prefix {
	case MainChain.pkey_prefix:
		return &MainChain, true
	case TestChain.pkey_prefix:
		return &TestChain, true
	case BitcoinMainChain.pkey_prefix:
		return &BitcoinMainChain, true
	}
	return nil, false
}
