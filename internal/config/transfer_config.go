package config

import "time"

type TransferConfig interface {
	GetTransferKey() []byte
	GetTransferTTL() time.Duration
	GetTransferRoute() string
}

type Transfer struct{}

var _ TransferConfig = Transfer{}

// GetTransferKey returns the HMAC key used to sign transfer payloads.
// All tenant origins of one deployment share this key.
func (Transfer) GetTransferKey() []byte {
	return []byte(GetEnv("TRANSFER_KEY", "dev-transfer-key-not-for-production"))
}

func (Transfer) GetTransferTTL() time.Duration {
	return 60 * time.Second
}

// GetTransferRoute returns the path of the dedicated receiving route
func (Transfer) GetTransferRoute() string {
	return "/session/receive"
}
