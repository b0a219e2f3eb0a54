package interfaces

import "context"

// -----------------------------------------------------------------------------
// INarrator defines the contract for the generative narrative feature.
// -----------------------------------------------------------------------------

type INarrator interface {

	// -----------------------------------------------------------------------------

	// Narrate produces a natural-language reading of the chip summary.
	// It never returns an error: failures yield a human-readable fallback
	// string so the narrative panel cannot block the rest of the view.
	Narrate(ctx context.Context, stockID, stockName, chipSummary string) string
}
