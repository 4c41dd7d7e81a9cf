package tui

// Color constants for the board theme
const (
	ColorBorder        = "#3A3F55" // Grey-blue
	ColorBorderFocused = "#7C3AED" // Focused column

	ColorPrimaryText   = "#E6EAF2"
	ColorSecondaryText = "#B1B8C7"
	ColorPlaceholder   = "#6D7383"
	ColorHelpText      = "240"

	ColorAccentMain   = "#7C3AED"
	ColorAccentBright = "#A78BFA" // Selected card

	// Column accents, also used for chart bars
	ColorPending    = "#F59E0B"
	ColorInProgress = "#3B82F6"
	ColorCompleted  = "#22C55E"

	ColorError   = "#EF4444"
	ColorSuccess = "#22C55E"
)
