package decode

import "github.com/solmev/coreengine/pkg/core"

// globalConfigFeeRecipients is the number of trailing fee-recipient slots
// in the CP-Bonding program's singleton config account. The teacher treats
// PumpGlobalConfig as a fixed well-known address (pkg/pool/pump/amm.go)
// rather than decoding its contents; pump.fun's GlobalConfig ships this as
// a fixed-size trailing array rather than a length-prefixed vector.
const globalConfigFeeRecipients = 8

// DecodeGlobalConfig decodes the CP-Bonding program's singleton config
// account, following the same discriminator header convention as the other
// Anchor accounts in this package.
func DecodeGlobalConfig(addr core.Address, data []byte) (*core.GlobalConfig, error) {
	if !checkDiscriminator(data, "GlobalConfig") {
		return nil, core.ErrNotThisKind
	}
	const recipientsSpan = 32 * globalConfigFeeRecipients
	if len(data) < 8+recipientsSpan {
		return nil, core.ErrMalformed
	}

	start := len(data) - recipientsSpan
	recipients := make([]core.Address, 0, globalConfigFeeRecipients)
	for i := 0; i < globalConfigFeeRecipients; i++ {
		a := readPubkey(data, start+i*32)
		if !a.IsZero() {
			recipients = append(recipients, a)
		}
	}

	return &core.GlobalConfig{
		Address:               addr,
		ProtocolFeeRecipients: recipients,
	}, nil
}
