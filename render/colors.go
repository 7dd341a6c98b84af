package render

// Chart theme colors (Tokyo Night base)
var (
	RgbBackground = RGB{26, 27, 38}
	RgbPanel      = RGB{36, 40, 59}
	RgbText       = RGB{192, 202, 245}
	RgbTextDim    = RGB{86, 95, 137}
	RgbAxis       = RGB{65, 72, 104}
	RgbGold       = RGB{255, 215, 0}
	RgbSilver     = RGB{200, 205, 215}
	RgbBronze     = RGB{205, 127, 50}
	RgbError      = RGB{247, 118, 142}
	RgbStatusBg   = RGB{122, 162, 247}
	RgbStatusText = RGB{0, 0, 0}
)
