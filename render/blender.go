package render

// BlendMode packs a compositing op (low nibble) with the channels it targets (high nibble)
type BlendMode uint8

const (
	opReplace uint8 = 0x00
	opAlpha   uint8 = 0x01
	opScreen  uint8 = 0x02
)

const (
	flagBg uint8 = 0x10
	flagFg uint8 = 0x20
)

const (
	BlendReplace = BlendMode(opReplace | flagBg | flagFg)
	BlendAlpha   = BlendMode(opAlpha | flagBg | flagFg)

	// BlendScreenBg lightens the background only; used for highlight halos behind text
	BlendScreenBg = BlendMode(opScreen | flagBg)
)
