// Package client implements the client-side network layer: the persisted
// player identity, LAN server discovery, the connection handshake and the
// broadcast receive loop. Rendering and input polling live elsewhere.
package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// DefaultDataFile is where the player identity cache lives
const DefaultDataFile = "player_data.json"

// PlayerData is the locally persisted player identity. The UUID outlives
// connections and usernames; it is what the server keys the player's
// state by.
type PlayerData struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
	Hat      string `json:"hat"`
}

// LoadPlayerData reads the identity cache. A missing file yields empty
// data rather than an error; only a present-but-unreadable file fails.
func LoadPlayerData(path string) (*PlayerData, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &PlayerData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read player data: %w", err)
	}

	var data PlayerData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse player data %s: %w", path, err)
	}
	return &data, nil
}

// EnsureUUID generates and assigns a fresh identity when none is stored,
// reporting whether one was generated
func (d *PlayerData) EnsureUUID() bool {
	if d.UUID != "" {
		return false
	}
	d.UUID = uuid.NewString()
	return true
}

// Save writes the identity cache back to disk
func (d *PlayerData) Save(path string) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode player data: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write player data: %w", err)
	}
	return nil
}
