// chatcli joins a password-protected chat room hosted by chatsrv and
// presents a full-screen terminal view: the inbound feed above, the input
// line below. Incoming messages never disturb text being typed.
//
// Every flag default may be supplied via the environment or a .env file:
// CHATCLI_HOST, CHATCLI_PORT, CHATCLI_SECRET, CHATCLI_NICK.
package main
