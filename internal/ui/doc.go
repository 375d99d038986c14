// Package ui contains the Bubble Tea program that renders the tab cycling
// overlay. Model.Update only translates terminal messages into calls on a
// cycle.Controller and turns the controller's actions into commands; the
// gesture rules themselves live in internal/cycle.
//
// Message flow:
//   - Key press and release messages are converted to cycle.Key values using
//     the physical (base) key code, so the cycle key matches under any layout.
//   - An ActionFetch becomes a getRecents call on the gateway, executed through
//     the command bus. Its result comes back as recentsLoadedMsg tagged with
//     the generation that issued it; the controller drops stale ones.
//   - An ActionCommit closes the overlay and issues activateTab. An
//     ActionCancel closes it without switching.
//   - Focus loss (tea.BlurMsg) cancels any open session.
//
// Rendering:
//   - Each candidate is a card. Cached JPEG previews are drawn with half-block
//     cells; candidates without a preview show the title's initial.
//   - Decoded thumbnails are cached per tab and capture time.
package ui
