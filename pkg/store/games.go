//Package store persists approved and pending game records as wholesale JSON
//files: load the entire file, mutate in memory, write the entire file back.
//No incremental writes, matching what the dashboard expects to read.
package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

//Score is the final score of one game from our side's perspective
type Score struct {
	Us   int `json:"us"`
	Them int `json:"them"`
}

//Quarters holds per-quarter points for both sides
type Quarters struct {
	Us   []int `json:"us"`
	Them []int `json:"them"`
}

//Player is one player's line in a game record
type Player struct {
	Name      string `json:"name"`
	Points    int    `json:"pts"`
	Rebounds  int    `json:"reb"`
	Assists   int    `json:"ast"`
	FieldGoal string `json:"fg,omitempty"`
}

//Game is one approved or pending game record. Screenshot doubles as the
//import key: the same capture is never ingested twice.
type Game struct {
	ID              string   `json:"id"`
	Date            string   `json:"date"`
	Screenshot      string   `json:"screenshot"`
	Opponent        string   `json:"opponent"`
	Score           Score    `json:"score"`
	Quarters        Quarters `json:"quarters"`
	Players         []Player `json:"players"`
	OpponentPlayers []Player `json:"opponent_players,omitempty"`
}

//Store owns the two JSON files: the approved games and the pending queue
//awaiting stat correction and approval
type Store struct {
	GamesPath   string
	PendingPath string
}

//NewStore places games.json and pending_games.json under dir
func NewStore(dir string) *Store {
	return &Store{
		GamesPath:   path.Join(dir, "games.json"),
		PendingPath: path.Join(dir, "pending_games.json"),
	}
}

//NewGameRecord builds a game record with a fresh id. Empty gameDate means
//today.
func NewGameRecord(opponent string, usScore, themScore int, usQuarters, themQuarters []int,
	players []Player, screenshot, gameDate string) Game {
	if gameDate == "" {
		gameDate = time.Now().Format("2006-01-02")
	}
	return Game{
		ID:         "game_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		Date:       gameDate,
		Screenshot: screenshot,
		Opponent:   opponent,
		Score:      Score{Us: usScore, Them: themScore},
		Quarters:   Quarters{Us: usQuarters, Them: themQuarters},
		Players:    players,
	}
}

//Validate rejects records missing the required fields
func Validate(g Game) error {
	switch {
	case g.ID == "":
		return fmt.Errorf("store: Missing required field 'id'")
	case g.Date == "":
		return fmt.Errorf("store: Missing required field 'date'")
	case g.Screenshot == "":
		return fmt.Errorf("store: Missing required field 'screenshot'")
	case g.Opponent == "":
		return fmt.Errorf("store: Missing required field 'opponent'")
	}
	return nil
}

type gamesFile struct {
	Games []Game `json:"games"`
}

type pendingFile struct {
	Pending []Game `json:"pending"`
}

//LoadGames returns every approved game. A missing file is an empty store.
func (s *Store) LoadGames() ([]Game, error) {
	var f gamesFile
	if err := loadJSON(s.GamesPath, &f); err != nil {
		return nil, err
	}
	return f.Games, nil
}

//LoadPending returns the pending queue. A missing file is an empty queue.
func (s *Store) LoadPending() ([]Game, error) {
	var f pendingFile
	if err := loadJSON(s.PendingPath, &f); err != nil {
		return nil, err
	}
	return f.Pending, nil
}

//AppendGame adds an approved game. A record whose screenshot was already
//imported is skipped without error.
func (s *Store) AppendGame(g Game) (bool, error) {
	if err := Validate(g); err != nil {
		return false, err
	}

	games, err := s.LoadGames()
	if err != nil {
		return false, err
	}

	if hasScreenshot(games, g.Screenshot) {
		return false, nil
	}

	games = append(games, g)
	return true, saveJSON(s.GamesPath, gamesFile{Games: games})
}

//AddPending queues a game for approval, skipping screenshots already pending
//or already approved
func (s *Store) AddPending(g Game) (bool, error) {
	if err := Validate(g); err != nil {
		return false, err
	}

	pending, err := s.LoadPending()
	if err != nil {
		return false, err
	}
	if hasScreenshot(pending, g.Screenshot) {
		return false, nil
	}

	approved, err := s.LoadGames()
	if err != nil {
		return false, err
	}
	if hasScreenshot(approved, g.Screenshot) {
		return false, nil
	}

	pending = append(pending, g)
	return true, saveJSON(s.PendingPath, pendingFile{Pending: pending})
}

//Approve moves a pending game into the approved store, applying optional
//player corrections first. Returns false when the id is not pending.
func (s *Store) Approve(gameID string, players, opponentPlayers []Player) (bool, error) {
	pending, err := s.LoadPending()
	if err != nil {
		return false, err
	}

	idx := -1
	for i, g := range pending {
		if g.ID == gameID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}

	game := pending[idx]
	if players != nil {
		game.Players = players
	}
	if opponentPlayers != nil {
		game.OpponentPlayers = opponentPlayers
	}

	approved, err := s.LoadGames()
	if err != nil {
		return false, err
	}

	//remove from the queue before appending to the approved store: a failure
	//between the two writes must never leave the record in both files
	remaining := make([]Game, 0, len(pending)-1)
	remaining = append(remaining, pending[:idx]...)
	remaining = append(remaining, pending[idx+1:]...)
	if err := saveJSON(s.PendingPath, pendingFile{Pending: remaining}); err != nil {
		return false, err
	}

	approved = append(approved, game)
	if err := saveJSON(s.GamesPath, gamesFile{Games: approved}); err != nil {
		//put the queue back so the record is not lost
		if rbErr := saveJSON(s.PendingPath, pendingFile{Pending: pending}); rbErr != nil {
			log.Printf("store.Approve: Could not restore pending queue, got '%v'", rbErr)
		}
		return false, err
	}

	return true, nil
}

//Reject drops a pending game. Returns false when the id is not pending.
func (s *Store) Reject(gameID string) (bool, error) {
	pending, err := s.LoadPending()
	if err != nil {
		return false, err
	}

	kept := make([]Game, 0, len(pending))
	for _, g := range pending {
		if g.ID != gameID {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(pending) {
		return false, nil
	}

	return true, saveJSON(s.PendingPath, pendingFile{Pending: kept})
}

func hasScreenshot(games []Game, screenshot string) bool {
	for _, g := range games {
		if g.Screenshot == screenshot {
			return true
		}
	}
	return false
}

func loadJSON(filePath string, out interface{}) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("store: Could not read '%s', got '%v'", filePath, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("store: Could not parse '%s', got '%v'", filePath, err)
	}
	return nil
}

func saveJSON(filePath string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("store: Could not encode '%s', got '%v'", filePath, err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("store: Could not write '%s', got '%v'", filePath, err)
	}
	return nil
}
