// Package notify pushes committed swap events to connected users over websockets.
//
// A Hub tracks every open connection by user id and implements
// events.EventHandler, so it can be registered on the application's event
// emitter. Each event is delivered to all connections of the requester and
// the receiver. Connections are read only to service pings and closes.
package notify
