package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func TestDialAndExchange(t *testing.T) {
	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		peer := New(conn)
		for {
			pkt, err := peer.ReadPacket()
			if err != nil {
				return
			}
			if err := peer.WritePacket([]byte(strings.ToUpper(string(pkt)))); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	rw, err := Dial("ws"+strings.TrimPrefix(srv.URL, "http"), "")
	require.NoError(t, err)
	defer rw.Close()
	require.NoError(t, rw.WritePacket([]byte("abc\r\n")))
	pkt, err := rw.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte("ABC\r\n"), pkt)
}
