package websocket

// ServeWs registers a live client for identifier and blocks until it leaves.
func ServeWs(hub *Hub, conn Conn, identifier string) {
	client := NewClient(hub, conn, identifier)
	if !client.Hub.join(client) {
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
