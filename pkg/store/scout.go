package store

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

//ScoutPlayer is one opposing player's box-score line in a scouted game. The
//stat set is wider than Player because scouting wants shooting splits, not
//just totals.
type ScoutPlayer struct {
	Name      string `json:"name"`
	Position  string `json:"pos,omitempty"`
	Points    int    `json:"pts"`
	Rebounds  int    `json:"reb"`
	Assists   int    `json:"ast"`
	Steals    int    `json:"stl"`
	Blocks    int    `json:"blk"`
	Turnovers int    `json:"to"`
	Fouls     int    `json:"fls"`
	FGMade    int    `json:"fgm"`
	FGAtt     int    `json:"fga"`
	ThreeMade int    `json:"tpm"`
	ThreeAtt  int    `json:"tpa"`
	FTMade    int    `json:"ftm"`
	FTAtt     int    `json:"fta"`
}

//ScoutGame is one game of the scouted team, seen from their side
type ScoutGame struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	OppScore     int           `json:"opp_score"`
	ScoutTeamWon bool          `json:"scout_team_won"`
	Players      []ScoutPlayer `json:"players"`
}

//Dossier is everything known about the scouted opponent, persisted as one
//file. Pending games live alongside the approved ones, so an approval is a
//single write.
type Dossier struct {
	ScoutTeam string      `json:"scout_team"`
	Games     []ScoutGame `json:"games"`
	Pending   []ScoutGame `json:"pending"`
}

//ScoutStore owns the scouting dossier file, wholly separate from the game
//store
type ScoutStore struct {
	Path string

	//DefaultTeam seeds the dossier when the file does not exist yet
	DefaultTeam string
}

//NewScoutStore places scouting.json under dir
func NewScoutStore(dir, team string) *ScoutStore {
	return &ScoutStore{
		Path:        path.Join(dir, "scouting.json"),
		DefaultTeam: team,
	}
}

//NewScoutGame builds a scouted game record with a fresh id. Empty gameDate
//means today.
func NewScoutGame(oppScore int, scoutTeamWon bool, players []ScoutPlayer, gameDate string) ScoutGame {
	if gameDate == "" {
		gameDate = time.Now().Format("2006-01-02")
	}
	return ScoutGame{
		ID:           "scout_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		Date:         gameDate,
		OppScore:     oppScore,
		ScoutTeamWon: scoutTeamWon,
		Players:      players,
	}
}

//Load returns the dossier. A missing file is an empty dossier for the
//configured team.
func (s *ScoutStore) Load() (Dossier, error) {
	d := Dossier{ScoutTeam: s.DefaultTeam}
	if err := loadJSON(s.Path, &d); err != nil {
		return Dossier{}, err
	}
	if d.ScoutTeam == "" {
		d.ScoutTeam = s.DefaultTeam
	}
	return d, nil
}

//AddPending queues a scouted game for approval
func (s *ScoutStore) AddPending(g ScoutGame) error {
	d, err := s.Load()
	if err != nil {
		return err
	}

	d.Pending = append(d.Pending, g)
	return saveJSON(s.Path, d)
}

//Approve moves a pending scouted game into the approved list. Returns false
//when the id is not pending.
func (s *ScoutStore) Approve(gameID string) (bool, error) {
	d, err := s.Load()
	if err != nil {
		return false, err
	}

	idx := -1
	for i, g := range d.Pending {
		if g.ID == gameID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}

	d.Games = append(d.Games, d.Pending[idx])
	d.Pending = append(d.Pending[:idx], d.Pending[idx+1:]...)
	return true, saveJSON(s.Path, d)
}

//Reject drops a pending scouted game. Returns false when the id is not
//pending.
func (s *ScoutStore) Reject(gameID string) (bool, error) {
	d, err := s.Load()
	if err != nil {
		return false, err
	}

	kept := make([]ScoutGame, 0, len(d.Pending))
	for _, g := range d.Pending {
		if g.ID != gameID {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(d.Pending) {
		return false, nil
	}

	d.Pending = kept
	return true, saveJSON(s.Path, d)
}
