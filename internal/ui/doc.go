// Package ui implements the live scoreboard using bubbletea's Elm architecture.
//
// The [Model] is the engine's single consumer. A tea.Cmd blocks on the engine's
// outcome queue and turns each delivery into a [Msg]; Update applies it:
//   - fresh data replaces the visible scorecard and clears every notice
//   - stale data keeps the cached scorecard, sets "Network error (n/max)" and
//     raises a toast that dismisses itself after a few seconds
//   - a hard failure leaves the screen as it was and opens an error panel
//     that stays until a key is pressed
//
// The first rate-limited response also shows a one-time notice carrying the
// provider's reset hint.
//
// Keys: r refresh, a toggle auto-refresh, m change match, tab next innings, q quit.
// Scorecards render through bubbles/table and the progress section is always
// labelled as interpolated.
package ui
