package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	MsgTypeHeartbeat    = 1
	MsgTypeCreateRoom   = 101
	MsgTypeJoinRoom     = 102
	MsgTypeListPlayers  = 103
	MsgTypeForceAssign  = 104
	MsgTypeGetRole      = 105
	MsgTypeSubmitGuess  = 106
	MsgTypeGetResult    = 107
	MsgTypeLeaderboard  = 108
	MsgTypeAdvanceRound = 109
)

const headerSize = 6

// send frames and sends a message: msgID(2) | status(2) | length(2) | payload.
// Client-originated packets always carry status zero.
func send(c *websocket.Conn, msgID uint16, data []byte) error {
	packet := make([]byte, headerSize+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], 0)
	binary.BigEndian.PutUint16(packet[4:6], uint16(len(data)))
	copy(packet[headerSize:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func sendJSON(c *websocket.Conn, msgID uint16, v interface{}) {
	data, _ := json.Marshal(v)
	if err := send(c, msgID, data); err != nil {
		log.Println("Write error:", err)
	}
}

func usage() {
	log.Println(`Commands:
  create <playerName> [roomName]   create a room and take the first seat
  join <roomId> <playerName>       join a room (or its waitlist)
  players <roomId>                 list seated players and waitlist size
  assign <roomId>                  force a fresh role assignment
  role <roomId> <playerId>         reveal your own role
  guess <roomId> <playerId> <accusedId>  Mantri accuses a player of being the Chor
  result <roomId>                  show the current round result
  board <roomId>                   show the cumulative leaderboard
  next <roomId>                    advance to the next round
  quit`)
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	addr := "localhost:8080"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < headerSize {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			status := binary.BigEndian.Uint16(message[2:4])
			data := message[headerSize:]
			if status == 0 {
				log.Printf("<- RECV (ID: %d): %s", msgID, string(data))
			} else {
				log.Printf("<- RECV (ID: %d, status: %d): %s", msgID, status, string(data))
			}
		}
	}()

	// Keepalive
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				send(c, MsgTypeHeartbeat, nil)
			}
		}
	}()

	usage()

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(strings.TrimSpace(text))
			if len(fields) == 0 {
				continue
			}

			switch fields[0] {
			case "create":
				if len(fields) < 2 {
					usage()
					continue
				}
				req := map[string]string{"playerName": fields[1]}
				if len(fields) > 2 {
					req["roomName"] = strings.Join(fields[2:], " ")
				}
				sendJSON(c, MsgTypeCreateRoom, req)
			case "join":
				if len(fields) < 3 {
					usage()
					continue
				}
				sendJSON(c, MsgTypeJoinRoom, map[string]string{"roomId": fields[1], "playerName": fields[2]})
			case "players":
				if len(fields) < 2 {
					usage()
					continue
				}
				sendJSON(c, MsgTypeListPlayers, map[string]string{"roomId": fields[1]})
			case "assign":
				if len(fields) < 2 {
					usage()
					continue
				}
				sendJSON(c, MsgTypeForceAssign, map[string]string{"roomId": fields[1]})
			case "role":
				if len(fields) < 3 {
					usage()
					continue
				}
				sendJSON(c, MsgTypeGetRole, map[string]string{"roomId": fields[1], "playerId": fields[2]})
			case "guess":
				if len(fields) < 4 {
					usage()
					continue
				}
				sendJSON(c, MsgTypeSubmitGuess, map[string]string{
					"roomId":    fields[1],
					"playerId":  fields[2],
					"accusedId": fields[3],
				})
			case "result":
				if len(fields) < 2 {
					usage()
					continue
				}
				sendJSON(c, MsgTypeGetResult, map[string]string{"roomId": fields[1]})
			case "board":
				if len(fields) < 2 {
					usage()
					continue
				}
				sendJSON(c, MsgTypeLeaderboard, map[string]string{"roomId": fields[1]})
			case "next":
				if len(fields) < 2 {
					usage()
					continue
				}
				sendJSON(c, MsgTypeAdvanceRound, map[string]string{"roomId": fields[1]})
			case "quit", "exit":
				return
			default:
				usage()
			}
		}
	}
}
