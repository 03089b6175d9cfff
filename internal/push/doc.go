// Package push routes job progress to browsers over Server-Sent Events.
//
// A Registry maps a ClientID to the Channels opened for it (one per browser
// tab). A Notifier bound to one ClientID turns progress events into
// single-line fragments and writes them to every registered Channel. There is
// no unregister call for the HTTP layer: a Channel whose Send fails is pruned
// by the Notifier on the spot, which keeps the registry bounded for
// long-running processes.
package push
