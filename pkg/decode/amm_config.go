package decode

import "github.com/solmev/coreengine/pkg/core"

// Raydium CLMM AmmConfig account layout. The teacher's pack never decodes
// this account directly (pool structs only hold its address), so this
// follows the same discriminator+bump+index header convention the teacher
// uses for every other Anchor account (see DecodePumpPool) and the publicly
// documented AmmConfig field order.
const (
	ammConfigOwnerOffset        = 8 + 1 + 2 // discriminator + bump + index
	ammConfigTradeFeeRateOffset = ammConfigOwnerOffset + 32
	ammConfigProtocolFeeOffset  = ammConfigTradeFeeRateOffset + 4
	ammConfigTickSpacingOffset  = ammConfigProtocolFeeOffset + 4 + 4 // + fundFeeRate
	AmmConfigSpan               = ammConfigTickSpacingOffset + 2
)

// DecodeAmmConfig decodes a Raydium CLMM fee-tier configuration account.
func DecodeAmmConfig(addr core.Address, data []byte) (*core.AmmConfig, error) {
	if !checkDiscriminator(data, "AmmConfig") {
		return nil, core.ErrNotThisKind
	}
	if len(data) < AmmConfigSpan {
		return nil, core.ErrMalformed
	}
	return &core.AmmConfig{
		Address:         addr,
		TradeFeeRate:    readU32(data, ammConfigTradeFeeRateOffset),
		ProtocolFeeRate: readU32(data, ammConfigProtocolFeeOffset),
		TickSpacing:     readU16(data, ammConfigTickSpacingOffset),
	}, nil
}
