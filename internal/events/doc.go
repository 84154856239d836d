// Package events provides types and interfaces for swap lifecycle events.
//
// The negotiation engine emits a SwapEvent after each committed propose or
// respond operation. Handlers (such as the websocket notifier) subscribe to
// the emitter without the engine knowing about them.
//
// The primary components are:
//   - SwapEvent: what happened to which request, and who is involved
//   - EventHandler: interface for components that can handle events
//   - EventEmitter: interface for components that can emit events
package events
