// Package ui contains the Bubble Tea program that renders the popup menu and
// feeds terminal input to the interaction engine.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages, which are routed
//     through a typed handler registry so each tea.Msg is handled by a focused
//     function.
//   - Keyboard, mouse and focus messages are translated into engine.Event
//     values (input.go). Mouse positions are resolved against the bubblezone
//     marks and panel rectangles recorded by the last View.
//   - The engine reports selections, expansions and focus changes back through
//     the Host methods on Model. Selections are queued and handed to the
//     command bus once the triggering Dispatch has returned.
//
// Timers:
//   - Engine timers and the model's own refresh debounce share one clock.
//     With the system clock, expirations are posted to a channel and come back
//     into Update as timerFiredMsg so callbacks never race a transition.
//
// Backend interactions:
//   - A backend.Watcher streams tmux session snapshots and menu file changes.
//     The dispatcher updates the session store; session changes rebuild the
//     tree at once while file changes are debounced first.
//
// The program quits once the engine has closed the popup and no action is
// still running, or as soon as an action succeeds.
package ui
