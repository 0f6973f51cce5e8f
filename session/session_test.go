package session

import (
	"net"
	"testing"
	"time"

	"github.com/chorgame/server/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct{}

func (m *MockConnection) Send(msgID, status uint16, data []byte) error { return nil }
func (m *MockConnection) Close() error                                 { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                         { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)          {}
func (m *MockConnection) ReadPacket() (*network.Packet, error)         { return nil, nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{})

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	_, exists = manager.Get(sessionID)
	if exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestSession_Bind_Identity(t *testing.T) {
	sess := NewSession("s1", &MockConnection{})

	playerID, roomID := sess.Identity()
	if playerID != "" || roomID != "" {
		t.Error("Fresh session should have no identity")
	}

	sess.Bind("player1", "room1")
	playerID, roomID = sess.Identity()
	if playerID != "player1" || roomID != "room1" {
		t.Errorf("Expected player1/room1, got %s/%s", playerID, roomID)
	}
}

func TestManager_GetByPlayerID(t *testing.T) {
	manager := NewManager()

	sess1 := NewSession("session1", &MockConnection{})
	sess1.Bind("player100", "room1")

	sess2 := NewSession("session2", &MockConnection{})
	sess2.Bind("player200", "room1")

	sess3 := NewSession("session3", &MockConnection{})
	sess3.Bind("player100", "room2")

	manager.Add(sess1)
	manager.Add(sess2)
	manager.Add(sess3)

	if got := len(manager.GetByPlayerID("player100")); got != 2 {
		t.Errorf("Expected 2 sessions for player100, got %d", got)
	}
	if got := len(manager.GetByPlayerID("player200")); got != 1 {
		t.Errorf("Expected 1 session for player200, got %d", got)
	}
	if got := len(manager.GetByPlayerID("player300")); got != 0 {
		t.Errorf("Expected 0 sessions for player300, got %d", got)
	}
}

func TestManager_IdleSince(t *testing.T) {
	manager := NewManager()

	stale := NewSession("stale", &MockConnection{})
	stale.LastActive = time.Now().Add(-10 * time.Minute)
	fresh := NewSession("fresh", &MockConnection{})

	manager.Add(stale)
	manager.Add(fresh)

	idle := manager.IdleSince(time.Now().Add(-5 * time.Minute))
	if len(idle) != 1 {
		t.Fatalf("Expected 1 idle session, got %d", len(idle))
	}
	if idle[0].ID != "stale" {
		t.Errorf("Expected the stale session, got %s", idle[0].ID)
	}
}
