// Package channelimpl provides the native execution channel transports: a
// websocket client speaking the channel call contract, an in-process loopback
// invoker, and the operation dispatcher they share. The dispatcher backs the
// crypto-bridge-channeld daemon and the conformance tests; production targets
// point the websocket client at their platform's bridge endpoint.

package channelimpl
