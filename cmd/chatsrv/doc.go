// chatsrv hosts a password-protected text chat room over TCP.
//
// Every flag default may be supplied via the environment or a .env file:
// CHATSRV_ADDR, CHATSRV_PORT, CHATSRV_SECRET, CHATSRV_CAPACITY,
// CHATSRV_GREET_TAIL.
//
// The process console is the operator seat: plain lines are broadcast to
// the room, /help lists the available operator commands.
package main
